// Package store provides conversation history persistence. Absence of a
// persisted history is never an error; callers fall back to seed data.
package store

import (
	"context"
	"sync"

	"github.com/starkline/phone-mirror/backend/internal/model/chat"
)

// HistoryStore loads and saves per-persona transcripts. Load returns
// (nil, nil) when no history has been saved for the persona.
type HistoryStore interface {
	Load(ctx context.Context, personaID string) ([]chat.Message, error)
	Save(ctx context.Context, personaID string, history []chat.Message) error
}

// MemoryStore keeps transcripts for the process lifetime only.
type MemoryStore struct {
	mu        sync.RWMutex
	histories map[string][]chat.Message
}

// NewMemoryStore returns an empty in-memory history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{histories: make(map[string][]chat.Message)}
}

// Load returns a copy of the stored transcript, or (nil, nil) when absent.
func (s *MemoryStore) Load(_ context.Context, personaID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history, ok := s.histories[personaID]
	if !ok {
		return nil, nil
	}
	copied := make([]chat.Message, len(history))
	copy(copied, history)
	return copied, nil
}

// Save replaces the stored transcript for the persona.
func (s *MemoryStore) Save(_ context.Context, personaID string, history []chat.Message) error {
	copied := make([]chat.Message, len(history))
	copy(copied, history)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories[personaID] = copied
	return nil
}
