// Package gossip keeps a process-lifetime log of what personas have relayed
// about each other, plus the heuristics that detect relay requests in text.
package gossip

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/starkline/phone-mirror/backend/internal/model/persona"
)

// Entry records one piece of relayed context.
type Entry struct {
	FromID     string    `json:"fromId"`
	AboutID    string    `json:"aboutId"`
	Content    string    `json:"content"`
	RecordedAt time.Time `json:"recordedAt"`
	FromUser   bool      `json:"fromUser"`
}

// Share is a detected relay target and payload.
type Share struct {
	TargetID string
	Content  string
}

// DefaultCapacity bounds the log; the oldest entry is evicted first.
const DefaultCapacity = 50

// DefaultMaxAge bounds how long an entry stays relevant for context lookups.
const DefaultMaxAge = 30 * time.Minute

// Store is the only state shared across conversations. A single mutex is
// enough given its low contention.
type Store struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
	personas persona.Store
	now      func() time.Time
}

// NewStore builds a store over the given persona registry. capacity <= 0
// falls back to DefaultCapacity.
func NewStore(personas persona.Store, capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		personas: personas,
		now:      time.Now,
	}
}

// Share-request patterns, tried in order. These are best-effort classifiers,
// not a grammar; adversarial phrasing will slip through.
var shareVerbPattern = regexp.MustCompile(`(?i)\b(tell|inform|share|let\s+\S+\s+know)\b`)

var extractionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\btell\s+\S+\s+(?:that\s+)?(.+)$`),
	regexp.MustCompile(`(?i)\blet\s+\S+\s+know\s+(?:that\s+|about\s+)?(.+)$`),
	regexp.MustCompile(`(?i)\binform\s+\S+\s+(?:that\s+|about\s+)?(.+)$`),
	regexp.MustCompile(`(?i)\bshare\s+(.+?)\s+with\s+\S+`),
}

var outgoingIntentPattern = regexp.MustCompile(`(?i)\bi(?:'ll|\s+will|\s+am\s+going\s+to|\s+can)\s+(?:tell|inform|let\s+\S+\s+know|pass\s+(?:this|that|it)\s+(?:along|on))\b`)

// DetectShareRequest reports whether a user message asks the current persona
// to relay something to a different known persona, and extracts the payload.
func (s *Store) DetectShareRequest(message, fromID string) (Share, bool) {
	if !shareVerbPattern.MatchString(message) {
		return Share{}, false
	}

	target, ok := s.namedPersona(message, fromID)
	if !ok {
		return Share{}, false
	}

	for _, pattern := range extractionPatterns {
		if m := pattern.FindStringSubmatch(message); m != nil {
			content := strings.TrimSpace(m[1])
			if content != "" {
				return Share{TargetID: target.ID, Content: content}, true
			}
		}
	}

	// No pattern captured a sub-span; quote the whole message.
	return Share{TargetID: target.ID, Content: fmt.Sprintf("%q", strings.TrimSpace(message))}, true
}

// DetectOutgoingIntent reports personas a generated reply promises to relay
// something to, one share per distinct named persona, self excluded.
func (s *Store) DetectOutgoingIntent(responseText, fromID string) []Share {
	if !outgoingIntentPattern.MatchString(responseText) {
		return nil
	}

	var shares []Share
	seen := make(map[string]bool)
	for _, target := range s.allNamedPersonas(responseText) {
		if target.ID == fromID || seen[target.ID] {
			continue
		}
		seen[target.ID] = true
		shares = append(shares, Share{TargetID: target.ID, Content: strings.TrimSpace(responseText)})
	}
	return shares
}

// Record appends an entry, evicting the oldest past capacity. Entries that
// reference the same persona as both source and subject are dropped.
func (s *Store) Record(entry Entry) {
	if entry.FromID == entry.AboutID {
		return
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	if len(s.entries) > s.capacity {
		s.entries = s.entries[len(s.entries)-s.capacity:]
	}
}

// ContextFor returns entries about the given persona that are younger than
// maxAge, oldest first.
func (s *Store) ContextFor(aboutID string, maxAge time.Duration) []Entry {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []Entry
	for _, entry := range s.entries {
		if entry.AboutID == aboutID && entry.RecordedAt.After(cutoff) {
			matched = append(matched, entry)
		}
	}
	return matched
}

// RenderContext produces a bullet summary suitable for prompt injection.
// Returns "" when nothing is known.
func (s *Store) RenderContext(aboutID string, maxAge time.Duration) string {
	entries := s.ContextFor(aboutID, maxAge)
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Things you have heard recently:\n")
	for _, entry := range entries {
		fromName := entry.FromID
		if p, ok := s.personas.FindByID(entry.FromID); ok {
			fromName = p.Name
		}
		if entry.FromUser {
			fmt.Fprintf(&b, "- Tony asked %s to pass along: %s\n", fromName, entry.Content)
		} else {
			fmt.Fprintf(&b, "- %s mentioned: %s\n", fromName, entry.Content)
		}
	}
	return b.String()
}

// PurgeOlderThan drops expired entries in place; meant to run on a ticker.
func (s *Store) PurgeOlderThan(maxAge time.Duration) {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	for _, entry := range s.entries {
		if entry.RecordedAt.After(cutoff) {
			kept = append(kept, entry)
		}
	}
	s.entries = kept
}

// Len reports the current entry count.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// namedPersona finds the first known persona (other than fromID) mentioned
// in the text.
func (s *Store) namedPersona(text, fromID string) (persona.Persona, bool) {
	for _, p := range s.allNamedPersonas(text) {
		if p.ID != fromID {
			return p, true
		}
	}
	return persona.Persona{}, false
}

func (s *Store) allNamedPersonas(text string) []persona.Persona {
	lowered := strings.ToLower(text)
	var found []persona.Persona
	seen := make(map[string]bool)
	for _, p := range s.personas.List() {
		names := append([]string{p.Name, p.RealName}, p.Aliases...)
		for _, name := range names {
			if name == "" {
				continue
			}
			if containsWord(lowered, strings.ToLower(name)) && !seen[p.ID] {
				seen[p.ID] = true
				found = append(found, p)
				break
			}
		}
	}
	return found
}

// containsWord does a whole-word substring check so "happy" the persona is
// not confused with "happy" mid-word (e.g. "unhappy").
func containsWord(haystack, needle string) bool {
	idx := 0
	for {
		pos := strings.Index(haystack[idx:], needle)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(needle)
		beforeOK := start == 0 || !isWordChar(haystack[start-1])
		afterOK := end == len(haystack) || !isWordChar(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
