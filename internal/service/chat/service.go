// Package chat implements the phone-mirror conversation engine: session
// lifecycle, simulated reply latency, and proactive follow-up scheduling.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starkline/phone-mirror/backend/internal/analysis/sentiment"
	"github.com/starkline/phone-mirror/backend/internal/gossip"
	"github.com/starkline/phone-mirror/backend/internal/model/chat"
	"github.com/starkline/phone-mirror/backend/internal/model/persona"
	"github.com/starkline/phone-mirror/backend/internal/store"
)

var (
	ErrPersonaNotFound = errors.New("persona not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionInactive = errors.New("session is not active")
)

// Generator is the external text-generation collaborator.
type Generator interface {
	Reply(ctx context.Context, p persona.Persona, history []chat.Message, userMessage string) ([]string, error)
	FollowUp(ctx context.Context, p persona.Persona, history []chat.Message, silence time.Duration) ([]string, error)
}

// Notifier receives messages from personas whose conversation is not in the
// foreground. Fire-and-forget from the session's perspective.
type Notifier interface {
	BackgroundMessage(personaID, personaName, text string)
}

// timerHandle is what the injected timer factory returns; *time.Timer
// satisfies it.
type timerHandle interface {
	Stop() bool
}

// Simulated typing delay applied before each persona message bubble commits.
const (
	typingDelayMin = 1 * time.Second
	typingDelayMax = 3 * time.Second
)

// session is the mutable per-persona conversation state. All fields are
// guarded by the service mutex.
type session struct {
	id        string
	personaID string
	p         persona.Persona
	createdAt time.Time

	messages             []chat.Message
	lastUserMessageAt    time.Time
	lastPersonaMessageAt time.Time
	userMessageCount     int
	relationship         int
	anger                int

	active     bool
	openerSent bool
	// epoch guards late generation results: it bumps on Close so in-flight
	// work for a closed session is discarded instead of applied.
	epoch    int
	followUp timerHandle
}

// Service orchestrates all conversation sessions.
type Service struct {
	mu         sync.Mutex
	personas   persona.Store
	history    store.HistoryStore
	gen        Generator
	analyzer   *sentiment.Analyzer
	gossip     *gossip.Store
	notifier   Notifier
	sessions   map[string]*session
	foreground string

	// Injectable clock, randomness, timers, and sleeps keep scheduling
	// deterministic under test.
	now       func() time.Time
	randFloat func() float64
	after     func(time.Duration, func()) timerHandle
	sleep     func(time.Duration)
}

// NewService wires the conversation engine. notifier may be nil.
func NewService(personas persona.Store, history store.HistoryStore, gen Generator, analyzer *sentiment.Analyzer, gossipStore *gossip.Store, notifier Notifier) *Service {
	return &Service{
		personas:  personas,
		history:   history,
		gen:       gen,
		analyzer:  analyzer,
		gossip:    gossipStore,
		notifier:  notifier,
		sessions:  make(map[string]*session),
		now:       time.Now,
		randFloat: rand.Float64,
		after:     func(d time.Duration, fn func()) timerHandle { return time.AfterFunc(d, fn) },
		sleep:     time.Sleep,
	}
}

// Open foregrounds the conversation with a persona, creating its session on
// first use. A fresh conversation gets a one-time opener so the persona
// texts first. Returns the session view and the current transcript.
func (s *Service) Open(ctx context.Context, personaID string) (chat.Session, []chat.Message, error) {
	p, ok := s.personas.FindByID(personaID)
	if !ok {
		return chat.Session{}, nil, ErrPersonaNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessions[personaID]
	if sess == nil {
		history := s.loadHistory(ctx, p)
		sess = &session{
			id:        uuid.NewString(),
			personaID: p.ID,
			p:         p,
			createdAt: s.now(),
			messages:  history,
		}
		s.sessions[personaID] = sess
	}

	sess.active = true
	sess.userMessageCount = 0
	sess.lastUserMessageAt = s.now()
	s.foreground = personaID

	if !sess.openerSent && !hasPersonaMessage(sess.messages) && len(p.OpenerLines) > 0 {
		line := p.OpenerLines[int(s.randFloat()*float64(len(p.OpenerLines)))%len(p.OpenerLines)]
		sess.messages = append(sess.messages, chat.Message{
			ID:        uuid.NewString(),
			PersonaID: p.ID,
			Sender:    chat.SenderPersona,
			Text:      line,
			SentAt:    s.now(),
		})
		sess.lastPersonaMessageAt = s.now()
		sess.openerSent = true
	}

	s.armFollowUpLocked(sess)
	return sessionView(sess), copyMessages(sess.messages), nil
}

// SubmitUserMessage appends the user's message, cancels any pending
// follow-up, scores sentiment, records gossip, and schedules the persona's
// reply behind the tiered latency model. A generation failure is returned
// to the caller; no reply is appended and session state is intact.
func (s *Service) SubmitUserMessage(ctx context.Context, personaID, text string) (sentiment.Result, error) {
	s.mu.Lock()
	sess := s.sessions[personaID]
	if sess == nil {
		s.mu.Unlock()
		return sentiment.Result{}, ErrSessionNotFound
	}
	if !sess.active {
		s.mu.Unlock()
		return sentiment.Result{}, ErrSessionInactive
	}

	s.cancelFollowUpLocked(sess)

	now := s.now()
	sess.messages = append(sess.messages, chat.Message{
		ID:        uuid.NewString(),
		PersonaID: personaID,
		Sender:    chat.SenderUser,
		Text:      text,
		SentAt:    now,
	})
	sess.lastUserMessageAt = now

	result := s.analyzer.Analyze(text, personaID)
	sess.relationship += result.RelationshipDelta
	if sess.p.TracksAnger {
		sess.anger += result.AngerDelta
	}

	if s.gossip != nil {
		if share, ok := s.gossip.DetectShareRequest(text, personaID); ok {
			s.gossip.Record(gossip.Entry{
				FromID:   personaID,
				AboutID:  share.TargetID,
				Content:  share.Content,
				FromUser: true,
			})
		}
	}

	p := sess.p
	epoch := sess.epoch
	count := sess.userMessageCount
	history := copyMessages(sess.messages)
	s.mu.Unlock()

	fragments, err := s.gen.Reply(ctx, p, history, text)
	if err != nil {
		return result, fmt.Errorf("reply generation failed: %w", err)
	}

	if s.gossip != nil {
		for _, fragment := range fragments {
			for _, share := range s.gossip.DetectOutgoingIntent(fragment, personaID) {
				s.gossip.Record(gossip.Entry{
					FromID:  personaID,
					AboutID: share.TargetID,
					Content: share.Content,
				})
			}
		}
	}

	delay := s.replyDelay(count)
	s.after(delay, func() {
		s.appendPersonaFragments(personaID, epoch, fragments, false, true)
	})
	return result, nil
}

// Transcript returns a copy of the session's message sequence.
func (s *Service) Transcript(personaID string) ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions[personaID]
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return copyMessages(sess.messages), nil
}

// Session returns the session view for a persona.
func (s *Service) Session(personaID string) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions[personaID]
	if sess == nil {
		return chat.Session{}, ErrSessionNotFound
	}
	return sessionView(sess), nil
}

// Close deactivates the session and cancels its pending follow-up. History
// stays in memory.
func (s *Service) Close(personaID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions[personaID]
	if sess == nil {
		return ErrSessionNotFound
	}
	sess.active = false
	sess.epoch++
	s.cancelFollowUpLocked(sess)
	if s.foreground == personaID {
		s.foreground = ""
	}
	return nil
}

// replyDelay models conversational warm-up: the first exchanges take the
// longest, then the persona loosens up.
func (s *Service) replyDelay(userMessageCount int) time.Duration {
	switch {
	case userMessageCount < 2:
		return s.randDuration(30*time.Second, 5*time.Minute)
	case userMessageCount < 5:
		return s.randDuration(10*time.Second, 60*time.Second)
	default:
		return s.randDuration(5*time.Second, 30*time.Second)
	}
}

func (s *Service) randDuration(min, max time.Duration) time.Duration {
	return min + time.Duration(s.randFloat()*float64(max-min))
}

// appendPersonaFragments commits generated bubbles to the session, with a
// typing delay before each one, then persists and re-arms. Late results for
// a closed session (stale epoch) are dropped.
func (s *Service) appendPersonaFragments(personaID string, epoch int, fragments []string, delayFirst, incrementCount bool) {
	for i, fragment := range fragments {
		if i > 0 || delayFirst {
			s.sleep(s.randDuration(typingDelayMin, typingDelayMax))
		}

		s.mu.Lock()
		sess := s.sessions[personaID]
		if sess == nil || sess.epoch != epoch {
			s.mu.Unlock()
			return
		}
		now := s.now()
		sess.messages = append(sess.messages, chat.Message{
			ID:        uuid.NewString(),
			PersonaID: personaID,
			Sender:    chat.SenderPersona,
			Text:      fragment,
			SentAt:    now,
		})
		sess.lastPersonaMessageAt = now
		name := sess.p.Name
		background := s.foreground != personaID
		s.mu.Unlock()

		if background && s.notifier != nil {
			s.notifier.BackgroundMessage(personaID, name, fragment)
		}
	}

	s.mu.Lock()
	sess := s.sessions[personaID]
	if sess == nil || sess.epoch != epoch {
		s.mu.Unlock()
		return
	}
	if incrementCount {
		sess.userMessageCount++
	}
	history := copyMessages(sess.messages)
	active := sess.active
	if active {
		s.armFollowUpLocked(sess)
	}
	s.mu.Unlock()

	if err := s.history.Save(context.Background(), personaID, history); err != nil {
		log.Printf("[chat] failed to persist history for persona=%s: %v", personaID, err)
	}
}

// loadHistory pulls the persisted transcript, falling back to the persona's
// seed history. Load failures degrade to the seed, never to an error.
func (s *Service) loadHistory(ctx context.Context, p persona.Persona) []chat.Message {
	history, err := s.history.Load(ctx, p.ID)
	if err != nil {
		log.Printf("[chat] failed to load history for persona=%s, using seed: %v", p.ID, err)
		history = nil
	}
	if history != nil {
		return history
	}

	now := s.now()
	seeded := make([]chat.Message, 0, len(p.SeedHistory))
	for _, sm := range p.SeedHistory {
		seeded = append(seeded, chat.Message{
			ID:        uuid.NewString(),
			PersonaID: p.ID,
			Sender:    chat.Sender(sm.Sender),
			Text:      sm.Text,
			SentAt:    now.Add(-sm.Age),
		})
	}
	return seeded
}

func hasPersonaMessage(messages []chat.Message) bool {
	for _, msg := range messages {
		if msg.Sender == chat.SenderPersona {
			return true
		}
	}
	return false
}

func sessionView(sess *session) chat.Session {
	return chat.Session{
		ID:        sess.id,
		PersonaID: sess.personaID,
		CreatedAt: sess.createdAt,
		Active:    sess.active,
	}
}

func copyMessages(messages []chat.Message) []chat.Message {
	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied
}
