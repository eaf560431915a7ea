package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starkline/phone-mirror/backend/internal/analysis/sentiment"
	"github.com/starkline/phone-mirror/backend/internal/gossip"
	chatmodel "github.com/starkline/phone-mirror/backend/internal/model/chat"
	"github.com/starkline/phone-mirror/backend/internal/model/persona"
	chatservice "github.com/starkline/phone-mirror/backend/internal/service/chat"
	"github.com/starkline/phone-mirror/backend/internal/store"
)

type stubGen struct{}

func (stubGen) Reply(context.Context, persona.Persona, []chatmodel.Message, string) ([]string, error) {
	return []string{"sure"}, nil
}

func (stubGen) FollowUp(context.Context, persona.Persona, []chatmodel.Message, time.Duration) ([]string, error) {
	return []string{"still there?"}, nil
}

func setupRouter() *chi.Mux {
	personas := persona.NewMemoryStore(persona.Seed())
	analyzer := sentiment.NewAnalyzer("bruce-banner")
	chatSvc := chatservice.NewService(personas, store.NewMemoryStore(), stubGen{}, analyzer, gossip.NewStore(personas, 0), nil)
	handler := New(chatSvc)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func TestOpenConversation(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/conversations/pepper-potts/open", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Session  chatmodel.Session   `json:"session"`
		Messages []chatmodel.Message `json:"messages"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Session.PersonaID != "pepper-potts" {
		t.Fatalf("unexpected persona: %s", body.Session.PersonaID)
	}
	if len(body.Messages) == 0 {
		t.Fatal("expected seeded transcript")
	}
}

func TestOpenUnknownPersona(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/conversations/thanos/open", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestSubmitMessageWithoutOpen(t *testing.T) {
	r := setupRouter()

	payload, _ := json.Marshal(map[string]string{"text": "hello"})
	req := httptest.NewRequest(http.MethodPost, "/conversations/rhodey/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestSubmitMessage(t *testing.T) {
	r := setupRouter()

	open := httptest.NewRequest(http.MethodPost, "/conversations/rhodey/open", nil)
	r.ServeHTTP(httptest.NewRecorder(), open)

	payload, _ := json.Marshal(map[string]string{"text": "you up?"})
	req := httptest.NewRequest(http.MethodPost, "/conversations/rhodey/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.Code)
	}
}

func TestSubmitMessageEmptyText(t *testing.T) {
	r := setupRouter()

	open := httptest.NewRequest(http.MethodPost, "/conversations/rhodey/open", nil)
	r.ServeHTTP(httptest.NewRecorder(), open)

	req := httptest.NewRequest(http.MethodPost, "/conversations/rhodey/messages", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestTranscriptAfterOpen(t *testing.T) {
	r := setupRouter()

	open := httptest.NewRequest(http.MethodPost, "/conversations/nick-fury/open", nil)
	r.ServeHTTP(httptest.NewRecorder(), open)

	req := httptest.NewRequest(http.MethodGet, "/conversations/nick-fury/transcript", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var transcript []chatmodel.Message
	if err := json.Unmarshal(resp.Body.Bytes(), &transcript); err != nil {
		t.Fatalf("invalid transcript body: %v", err)
	}
	if len(transcript) != 3 {
		t.Fatalf("expected 3 seeded messages, got %d", len(transcript))
	}
}

func TestCloseThenSubmitConflicts(t *testing.T) {
	r := setupRouter()

	open := httptest.NewRequest(http.MethodPost, "/conversations/rhodey/open", nil)
	r.ServeHTTP(httptest.NewRecorder(), open)

	closeReq := httptest.NewRequest(http.MethodPost, "/conversations/rhodey/close", nil)
	closeResp := httptest.NewRecorder()
	r.ServeHTTP(closeResp, closeReq)
	if closeResp.Code != http.StatusOK {
		t.Fatalf("expected 200 on close, got %d", closeResp.Code)
	}

	payload, _ := json.Marshal(map[string]string{"text": "hello"})
	req := httptest.NewRequest(http.MethodPost, "/conversations/rhodey/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}
