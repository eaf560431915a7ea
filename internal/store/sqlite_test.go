package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/starkline/phone-mirror/backend/internal/model/chat"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore err: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	sentAt := time.Now().UTC().Truncate(time.Second)
	saved := []chat.Message{
		{ID: "m1", PersonaID: "nick-fury", Sender: chat.SenderPersona, Text: "Stark.", SentAt: sentAt},
		{ID: "m2", PersonaID: "nick-fury", Sender: chat.SenderUser, Text: "busy", SentAt: sentAt.Add(time.Minute)},
	}

	if err := s.Save(ctx, "nick-fury", saved); err != nil {
		t.Fatalf("Save err: %v", err)
	}
	loaded, err := s.Load(ctx, "nick-fury")
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(loaded))
	}
	if loaded[0].ID != "m1" || loaded[1].ID != "m2" {
		t.Fatalf("unexpected order: %v", loaded)
	}
	if loaded[0].Sender != chat.SenderPersona {
		t.Fatalf("unexpected sender: %s", loaded[0].Sender)
	}
}

func TestSQLiteStoreLoadAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore err: %v", err)
	}
	defer s.Close()

	history, err := s.Load(context.Background(), "rhodey")
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if history != nil {
		t.Fatalf("expected nil history, got %v", history)
	}
}

func TestSQLiteStoreSaveReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore err: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	_ = s.Save(ctx, "rhodey", []chat.Message{{ID: "m1", Text: "one", SentAt: time.Now()}})
	_ = s.Save(ctx, "rhodey", []chat.Message{{ID: "m2", Text: "two", SentAt: time.Now()}})

	loaded, err := s.Load(ctx, "rhodey")
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != "m2" {
		t.Fatalf("Save should replace, got %v", loaded)
	}
}
