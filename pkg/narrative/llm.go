package narrative

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/jwebster45206/parley/pkg/chat"
)

//go:embed prompts/narrate.txt
var narratePrompt string

// Completer is the slice of an LLM client the narrator needs.
type Completer interface {
	Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)
}

// LLMNarrator renders a snapshot into a prompt and asks an LLM for prose.
type LLMNarrator struct {
	llm    Completer
	tmpl   *template.Template
	logger *slog.Logger
}

func NewLLMNarrator(llm Completer, logger *slog.Logger) (*LLMNarrator, error) {
	tmpl, err := template.New("narrate").Funcs(template.FuncMap{"title": Title}).Parse(narratePrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse narrative prompt: %w", err)
	}
	return &LLMNarrator{llm: llm, tmpl: tmpl, logger: logger}, nil
}

// Prompt renders the narration prompt for s.
func (n *LLMNarrator) Prompt(s Snapshot) (string, error) {
	var buf bytes.Buffer
	if err := n.tmpl.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("failed to render narrative prompt: %w", err)
	}
	return buf.String(), nil
}

func (n *LLMNarrator) Narrate(ctx context.Context, s Snapshot) (string, error) {
	prompt, err := n.Prompt(s)
	if err != nil {
		return "", err
	}

	messages := []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: prompt},
		{Role: chat.ChatRoleUser, Content: chat.FormatWithSpeaker(s.Dialogue, "Player")},
	}
	resp, err := n.llm.Chat(ctx, messages)
	if err != nil {
		n.logger.Warn("Narrative generation failed", "npc_id", s.NPCID, "action", s.Action, "error", err)
		return "", fmt.Errorf("failed to generate narrative: %w", err)
	}
	return resp.Message, nil
}
