package ai

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/starkline/phone-mirror/backend/internal/model/chat"
	"github.com/starkline/phone-mirror/backend/internal/model/persona"
)

// Canned serves persona-flavored stock lines when no LLM is configured, so
// the simulation keeps moving without credentials.
type Canned struct {
	randIntN func(int) int
}

// NewCanned returns a canned generator with the default random source.
func NewCanned() *Canned {
	return &Canned{randIntN: rand.IntN}
}

var genericReplies = []string{
	"Got it.",
	"Noted. Talk later.",
	"Can this wait? It can't, can it.",
}

var genericFollowUps = []string{
	"Hello? Anyone there?",
	"Still waiting on that reply.",
	"I know you saw this.",
}

// Reply picks a canned line from the persona's set, falling back to the
// generic pool.
func (c *Canned) Reply(_ context.Context, p persona.Persona, _ []chat.Message, _ string) ([]string, error) {
	lines := p.CannedLines
	if len(lines) == 0 {
		lines = genericReplies
	}
	return []string{lines[c.randIntN(len(lines))]}, nil
}

// FollowUp picks a canned re-engagement line.
func (c *Canned) FollowUp(_ context.Context, p persona.Persona, _ []chat.Message, _ time.Duration) ([]string, error) {
	lines := p.OpenerLines
	if len(lines) == 0 {
		lines = genericFollowUps
	}
	return []string{lines[c.randIntN(len(lines))]}, nil
}
