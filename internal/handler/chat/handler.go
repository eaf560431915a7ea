package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatservice "github.com/starkline/phone-mirror/backend/internal/service/chat"
	"github.com/starkline/phone-mirror/backend/pkg/utils"
)

// Handler exposes the conversation engine over HTTP.
type Handler struct {
	chatSvc *chatservice.Service
}

// New creates the chat handler.
func New(chatSvc *chatservice.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes wires the conversation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/conversations/{personaID}/open", h.handleOpen)
	r.Post("/conversations/{personaID}/messages", h.handleSubmitMessage)
	r.Get("/conversations/{personaID}/transcript", h.handleTranscript)
	r.Post("/conversations/{personaID}/close", h.handleClose)
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	personaID := chi.URLParam(r, "personaID")

	session, transcript, err := h.chatSvc.Open(r.Context(), personaID)
	if err != nil {
		if errors.Is(err, chatservice.ErrPersonaNotFound) {
			utils.RespondError(w, http.StatusNotFound, "persona not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"session":  session,
		"messages": transcript,
	})
}

func (h *Handler) handleSubmitMessage(w http.ResponseWriter, r *http.Request) {
	personaID := chi.URLParam(r, "personaID")

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Text == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	result, err := h.chatSvc.SubmitUserMessage(r.Context(), personaID, payload.Text)
	switch {
	case errors.Is(err, chatservice.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, "conversation not open")
		return
	case errors.Is(err, chatservice.ErrSessionInactive):
		utils.RespondError(w, http.StatusConflict, "conversation is closed")
		return
	case err != nil:
		// The user message is in; only the reply failed.
		utils.RespondError(w, http.StatusBadGateway, "reply generation failed")
		return
	}

	utils.RespondJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":    "queued",
		"sentiment": result,
	})
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	personaID := chi.URLParam(r, "personaID")

	transcript, err := h.chatSvc.Transcript(personaID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "conversation not open")
		return
	}
	utils.RespondJSON(w, http.StatusOK, transcript)
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	personaID := chi.URLParam(r, "personaID")

	if err := h.chatSvc.Close(personaID); err != nil {
		utils.RespondError(w, http.StatusNotFound, "conversation not open")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}
