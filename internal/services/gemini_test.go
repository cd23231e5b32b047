package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/parley/pkg/chat"
)

func TestNewGeminiService_RequiresKey(t *testing.T) {
	_, err := NewGeminiService(context.Background(), "", "", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestFlattenMessages(t *testing.T) {
	got := flattenMessages([]chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: "Player: hello"},
		{Role: chat.ChatRoleSystem, Content: "Narrate briefly."},
		{Role: chat.ChatRoleAgent, Content: "Elena: hi"},
	})
	assert.Equal(t, "Narrate briefly.\n\n[user]\nPlayer: hello\n\n[assistant]\nElena: hi", got)
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(" Elena "), genai.Text("nods. ")}},
		}},
	}
	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "Elena nods.", text)
}

func TestResponseText_Empty(t *testing.T) {
	_, err := responseText(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	_, err = responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{}}},
	})
	assert.Error(t, err)
}
