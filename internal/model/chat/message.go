package chat

import "time"

// Sender identifies which side of a conversation produced a message.
type Sender string

const (
	SenderUser    Sender = "user"
	SenderPersona Sender = "persona"
)

// Message is one turn in a persona conversation.
type Message struct {
	ID        string    `json:"id"`
	PersonaID string    `json:"personaId"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	SentAt    time.Time `json:"sentAt"`
}
