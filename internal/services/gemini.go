package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jwebster45206/parley/pkg/chat"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiService implements LLMService on the Gemini API.
type GeminiService struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	logger    *slog.Logger
}

// Ensure GeminiService implements LLMService interface
var _ LLMService = (*GeminiService)(nil)

func NewGeminiService(ctx context.Context, apiKey, modelName string, logger *slog.Logger) (*GeminiService, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiService{
		client:    client,
		model:     client.GenerativeModel(modelName),
		modelName: modelName,
		logger:    logger,
	}, nil
}

// InitModel switches to modelName. Gemini needs no warm-up.
func (g *GeminiService) InitModel(ctx context.Context, modelName string) error {
	if modelName != "" && modelName != g.modelName {
		g.model = g.client.GenerativeModel(modelName)
		g.modelName = modelName
	}
	g.logger.Info("Gemini narrator ready", "model", g.modelName)
	return nil
}

// Chat sends the conversation as a single prompt. The shared model is never
// mutated per call, so Chat is safe for concurrent use.
func (g *GeminiService) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(flattenMessages(messages)))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}
	return &chat.ChatResponse{Message: text}, nil
}

func (g *GeminiService) Close() error {
	return g.client.Close()
}

// flattenMessages renders system messages first, then the rest in order,
// each non-system message labelled with its role.
func flattenMessages(messages []chat.ChatMessage) string {
	var system, rest []string
	for _, msg := range messages {
		if msg.Role == chat.ChatRoleSystem {
			system = append(system, msg.Content)
			continue
		}
		rest = append(rest, fmt.Sprintf("[%s]\n%s", msg.Role, msg.Content))
	}
	return strings.Join(append(system, rest...), "\n\n")
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no content returned from Gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text, ok := part.(genai.Text)
		if !ok {
			return "", fmt.Errorf("unexpected response part %T from Gemini", part)
		}
		b.WriteString(string(text))
	}
	return strings.TrimSpace(b.String()), nil
}
