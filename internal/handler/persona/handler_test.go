package persona

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/starkline/phone-mirror/backend/internal/model/persona"
)

func setupRouter() *chi.Mux {
	handler := New(persona.NewMemoryStore(persona.Seed()))
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func TestListPersonas(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/personas", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var personas []persona.Persona
	if err := json.Unmarshal(resp.Body.Bytes(), &personas); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(personas) != 5 {
		t.Fatalf("expected 5 personas, got %d", len(personas))
	}
}

func TestGetPersona(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/personas/pepper-potts", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var p persona.Persona
	if err := json.Unmarshal(resp.Body.Bytes(), &p); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if p.Name != "Pepper" {
		t.Fatalf("unexpected persona name: %s", p.Name)
	}
}

func TestGetPersonaNotFound(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/personas/ultron", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
