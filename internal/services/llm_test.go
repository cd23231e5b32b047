package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jwebster45206/parley/internal/config"
)

func TestNewLLMService(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name    string
		cfg     config.Config
		wantNil bool
		wantErr bool
	}{
		{"none", config.Config{LLMProvider: config.ProviderNone}, true, false},
		{"empty", config.Config{}, true, false},
		{"anthropic", config.Config{LLMProvider: config.ProviderAnthropic, AnthropicAPIKey: "k"}, false, false},
		{"gemini without key", config.Config{LLMProvider: config.ProviderGemini}, true, true},
		{"unknown", config.Config{LLMProvider: "ollama"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewLLMService(context.Background(), &tt.cfg, logger)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewLLMService() error = %v, wantErr %v", err, tt.wantErr)
			}
			if (svc == nil) != tt.wantNil {
				t.Errorf("NewLLMService() service = %v, wantNil %v", svc, tt.wantNil)
			}
		})
	}
}

func TestNewLLMService_AnthropicUsesModelName(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{LLMProvider: config.ProviderAnthropic, AnthropicAPIKey: "k", ModelName: "claude-test"}

	svc, err := NewLLMService(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("NewLLMService failed: %v", err)
	}
	anthropic, ok := svc.(*AnthropicService)
	if !ok {
		t.Fatalf("Expected *AnthropicService, got %T", svc)
	}
	if anthropic.modelName != "claude-test" {
		t.Errorf("Expected model claude-test, got %s", anthropic.modelName)
	}
}
