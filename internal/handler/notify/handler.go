package notify

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	notifyservice "github.com/starkline/phone-mirror/backend/internal/service/notify"
	"github.com/starkline/phone-mirror/backend/pkg/utils"
)

// Handler pushes notification events to the UI over a websocket and accepts
// the viewing flag that drives the unread badge.
type Handler struct {
	relay    *notifyservice.Relay
	upgrader websocket.Upgrader
}

// New creates the notification handler.
func New(relay *notifyservice.Relay) *Handler {
	return &Handler{
		relay: relay,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes wires the notification routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/notifications/ws", h.handleWebSocket)
	r.Get("/notifications", h.handleSnapshot)
	r.Post("/notifications/viewing", h.handleViewing)
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	visible, unread := h.relay.Snapshot()
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": visible,
		"unread":        unread,
	})
}

func (h *Handler) handleViewing(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Viewing bool `json:"viewing"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.relay.SetViewing(payload.Viewing)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[notify] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := h.relay.Subscribe()
	defer cancel()

	// Replay the current surface so a reconnecting client catches up.
	visible, unread := h.relay.Snapshot()
	for i := range visible {
		n := visible[i]
		if err := conn.WriteJSON(notifyservice.Event{Type: "add", Notification: &n, Unread: unread}); err != nil {
			return
		}
	}

	// Drain client frames so pings and close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("[notify] websocket write failed: %v", err)
				return
			}
		}
	}
}
