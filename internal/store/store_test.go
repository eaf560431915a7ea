package store

import (
	"context"
	"testing"
	"time"

	"github.com/starkline/phone-mirror/backend/internal/model/chat"
)

func TestMemoryStoreLoadAbsent(t *testing.T) {
	s := NewMemoryStore()
	history, err := s.Load(context.Background(), "pepper-potts")
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if history != nil {
		t.Fatalf("expected nil history for absent persona, got %v", history)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	saved := []chat.Message{
		{ID: "m1", PersonaID: "rhodey", Sender: chat.SenderUser, Text: "hey", SentAt: time.Now()},
		{ID: "m2", PersonaID: "rhodey", Sender: chat.SenderPersona, Text: "what now", SentAt: time.Now()},
	}

	if err := s.Save(ctx, "rhodey", saved); err != nil {
		t.Fatalf("Save err: %v", err)
	}
	loaded, err := s.Load(ctx, "rhodey")
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(loaded))
	}
	if loaded[0].Text != "hey" || loaded[1].Text != "what now" {
		t.Fatalf("unexpected transcript order: %v", loaded)
	}
}

func TestMemoryStoreLoadReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Save(ctx, "rhodey", []chat.Message{{ID: "m1", Text: "original"}})

	loaded, _ := s.Load(ctx, "rhodey")
	loaded[0].Text = "mutated"

	again, _ := s.Load(ctx, "rhodey")
	if again[0].Text != "original" {
		t.Fatal("Load leaked internal slice")
	}
}
