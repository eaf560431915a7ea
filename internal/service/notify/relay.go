// Package notify surfaces background persona messages as transient alerts
// with escalation, throttling, and an unread badge.
package notify

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// quietWindow resets a persona's escalation counter after silence.
	quietWindow = 45 * time.Second
	// displayTimeout auto-dismisses each alert independently.
	displayTimeout = 10 * time.Second
	// maxVisible caps the alert list at the most recent entries.
	maxVisible = 3
)

// Notification is one transient alert shown over the UI.
type Notification struct {
	ID          string    `json:"id"`
	PersonaID   string    `json:"personaId"`
	PersonaName string    `json:"personaName"`
	Text        string    `json:"text"`
	Comment     string    `json:"comment"`
	PostedAt    time.Time `json:"postedAt"`
}

// Event is pushed to subscribers when the alert surface changes.
type Event struct {
	Type         string        `json:"type"` // "add", "remove", "unread"
	Notification *Notification `json:"notification,omitempty"`
	Unread       int           `json:"unread"`
}

type counter struct {
	count int
	last  time.Time
}

type timerHandle interface {
	Stop() bool
}

// Relay implements the notification surface. It is the chat service's
// Notifier collaborator.
type Relay struct {
	mu          sync.Mutex
	counters    map[string]*counter
	visible     []Notification
	unread      int
	viewing     bool
	subscribers map[chan Event]struct{}

	now      func() time.Time
	after    func(time.Duration, func()) timerHandle
	randIntN func(int) int
}

// NewRelay builds a relay with real clock and timers.
func NewRelay() *Relay {
	return &Relay{
		counters:    make(map[string]*counter),
		subscribers: make(map[chan Event]struct{}),
		now:         time.Now,
		after:       func(d time.Duration, fn func()) timerHandle { return time.AfterFunc(d, fn) },
		randIntN:    rand.IntN,
	}
}

var genericComments = []string{
	"Incoming message, sir.",
	"A new text has arrived.",
	"Your phone requests attention.",
}

// Persona-flavored lines for the 3rd and 4th message in a burst.
var personaComments = map[string]string{
	"pepper-potts": "Ms. Potts appears to have an agenda today, sir.",
	"happy-hogan":  "Mr. Hogan is being thorough. Again.",
	"rhodey":       "Colonel Rhodes is unusually persistent.",
	"nick-fury":    "Director Fury does not appear to enjoy waiting.",
	"bruce-banner": "Dr. Banner is texting. Calmly, so far.",
}

// BackgroundMessage records a message from a persona whose conversation is
// not open, escalating the commentary as the burst grows.
func (r *Relay) BackgroundMessage(personaID, personaName, text string) {
	r.mu.Lock()

	now := r.now()
	c := r.counters[personaID]
	if c == nil {
		c = &counter{}
		r.counters[personaID] = c
	}
	if now.Sub(c.last) > quietWindow {
		c.count = 0
	}
	c.count++
	c.last = now

	n := Notification{
		ID:          uuid.NewString(),
		PersonaID:   personaID,
		PersonaName: personaName,
		Text:        text,
		Comment:     r.comment(personaID, personaName, c.count),
		PostedAt:    now,
	}

	r.visible = append(r.visible, n)
	if len(r.visible) > maxVisible {
		r.visible = r.visible[len(r.visible)-maxVisible:]
	}
	if !r.viewing {
		r.unread++
	}
	unread := r.unread
	r.mu.Unlock()

	r.broadcast(Event{Type: "add", Notification: &n, Unread: unread})

	id := n.ID
	r.after(displayTimeout, func() {
		r.dismiss(id)
	})
}

// comment selects the escalation tier for the burst count.
func (r *Relay) comment(personaID, personaName string, count int) string {
	switch {
	case count == 1:
		return genericComments[r.randIntN(len(genericComments))]
	case count == 2:
		return fmt.Sprintf("Another message from %s, sir.", personaName)
	case count <= 4:
		if line, ok := personaComments[personaID]; ok {
			return line
		}
		return fmt.Sprintf("%s continues to text, sir.", personaName)
	default:
		return fmt.Sprintf("%s has sent %d messages. Perhaps consider replying, sir.", personaName, count)
	}
}

// SetViewing marks whether the conversation surface is in the foreground;
// viewing resets the unread badge.
func (r *Relay) SetViewing(viewing bool) {
	r.mu.Lock()
	r.viewing = viewing
	if viewing {
		r.unread = 0
	}
	unread := r.unread
	r.mu.Unlock()

	r.broadcast(Event{Type: "unread", Unread: unread})
}

// Snapshot returns the currently visible alerts and the unread count.
func (r *Relay) Snapshot() ([]Notification, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	visible := make([]Notification, len(r.visible))
	copy(visible, r.visible)
	return visible, r.unread
}

// Subscribe registers an event channel; the returned func unsubscribes.
func (r *Relay) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	r.mu.Lock()
	r.subscribers[ch] = struct{}{}
	r.mu.Unlock()

	return ch, func() {
		r.mu.Lock()
		delete(r.subscribers, ch)
		r.mu.Unlock()
		close(ch)
	}
}

func (r *Relay) dismiss(id string) {
	r.mu.Lock()
	var removed *Notification
	kept := r.visible[:0]
	for _, n := range r.visible {
		if n.ID == id {
			dismissed := n
			removed = &dismissed
			continue
		}
		kept = append(kept, n)
	}
	r.visible = kept
	unread := r.unread
	r.mu.Unlock()

	if removed != nil {
		r.broadcast(Event{Type: "remove", Notification: removed, Unread: unread})
	}
}

// broadcast never blocks: slow subscribers drop events.
func (r *Relay) broadcast(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ch := range r.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}
