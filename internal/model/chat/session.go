package chat

import "time"

// Session is the externally visible view of an open conversation.
type Session struct {
	ID        string    `json:"id"`
	PersonaID string    `json:"personaId"`
	CreatedAt time.Time `json:"createdAt"`
	Active    bool      `json:"active"`
}
