package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/starkline/phone-mirror/backend/internal/config"
	"github.com/starkline/phone-mirror/backend/internal/gossip"
	"github.com/starkline/phone-mirror/backend/internal/model/chat"
	"github.com/starkline/phone-mirror/backend/internal/model/persona"
)

const historyLimit = 6

// maxFragments bounds how many message bubbles a single generation produces.
const maxFragments = 3

// Service generates persona text through an LLM chain. Replies and
// follow-ups share one prompt pipeline; only the query differs.
type Service struct {
	chatModel model.ChatModel
	gossip    *gossip.Store
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the AI service. The gossip store may be nil; prompts
// then carry no cross-persona context.
func NewService(ctx context.Context, gossipStore *gossip.Store, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		gossip:    gossipStore,
		cfg:       cfg,
		chain:     runnable,
	}, nil
}

// Reply generates one or more reply fragments for a user message.
func (s *Service) Reply(ctx context.Context, p persona.Persona, history []chat.Message, userMessage string) ([]string, error) {
	input := map[string]any{
		"system":  s.buildSystemPrompt(p),
		"history": buildHistoryMessages(history),
		"query":   userMessage,
	}
	return s.invoke(ctx, p, input)
}

// FollowUp generates proactive fragments after the user has been silent.
func (s *Service) FollowUp(ctx context.Context, p persona.Persona, history []chat.Message, silence time.Duration) ([]string, error) {
	query := fmt.Sprintf(
		"(Tony has not replied for %d seconds. Send a short proactive text in your voice. "+
			"Do not mention the exact elapsed time.)", int(silence.Seconds()))
	input := map[string]any{
		"system":  s.buildSystemPrompt(p),
		"history": buildHistoryMessages(history),
		"query":   query,
	}
	return s.invoke(ctx, p, input)
}

func (s *Service) invoke(ctx context.Context, p persona.Persona, input map[string]any) ([]string, error) {
	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to run chat chain: %w", err)
	}

	fragments := SplitFragments(response.Content)
	if len(fragments) == 0 {
		return nil, fmt.Errorf("model returned empty response")
	}
	log.Printf("[ai] generated %d fragment(s) for persona=%s", len(fragments), p.ID)
	return fragments, nil
}

func (s *Service) buildSystemPrompt(p persona.Persona) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s (%s), texting Tony Stark from your own phone.\n", p.Name, p.RealName)
	fmt.Fprintf(&b, "Role: %s. Tone: %s.\n", p.Title, p.Tone)
	if p.PromptHint != "" {
		b.WriteString(p.PromptHint)
		b.WriteString("\n")
	}
	b.WriteString("Write like a text message: short, informal, no narration. " +
		"You may split your answer into at most three bubbles separated by blank lines.")

	if s.gossip != nil {
		if context := s.gossip.RenderContext(p.ID, gossip.DefaultMaxAge); context != "" {
			b.WriteString("\n\n")
			b.WriteString(context)
		}
	}
	return b.String()
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Sender {
		case chat.SenderUser:
			history = append(history, schema.UserMessage(msg.Text))
		case chat.SenderPersona:
			history = append(history, schema.AssistantMessage(msg.Text, nil))
		}
	}
	return history
}

// SplitFragments breaks a model response into message bubbles on blank
// lines, dropping empties and capping the count.
func SplitFragments(content string) []string {
	var fragments []string
	for _, part := range strings.Split(content, "\n\n") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fragments = append(fragments, part)
		if len(fragments) == maxFragments {
			break
		}
	}
	return fragments
}
