package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/parley/internal/config"
	"github.com/jwebster45206/parley/internal/storage"
	"github.com/jwebster45206/parley/pkg/catalog"
	"github.com/jwebster45206/parley/pkg/conversation"
)

type ConsoleConfig struct {
	PlayerID string
	LogFile  string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	// The console keeps everything in process unless a file is named.
	if cfg.StorageBackend == config.BackendRedis && os.Getenv("STORAGE_BACKEND") == "" {
		cfg.StorageBackend = config.BackendMemory
	}

	consoleCfg := &ConsoleConfig{
		PlayerID: getEnv("PLAYER_ID", "player"),
		LogFile:  os.Getenv("LOG_FILE"),
	}

	log, closeLog, err := consoleLogger(consoleCfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	cat, err := catalog.Load(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load catalog from %s: %v\n", cfg.DataDir, err)
		os.Exit(1)
	}
	if len(cat.NPCs()) == 0 {
		fmt.Fprintf(os.Stderr, "No NPCs found in %s\n", cfg.DataDir)
		os.Exit(1)
	}

	store, err := storage.Open(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = store.Close() // Ignore error in defer
	}()

	engine, err := conversation.NewEngine(conversation.Options{
		Catalog:          cat,
		Store:            store,
		NarrativeTimeout: cfg.NarrativeTimeout,
		SessionRetention: cfg.SessionRetention,
		Seed:             cfg.RNGSeed,
		Logger:           log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create engine: %v\n", err)
		os.Exit(1)
	}

	backend := &Backend{engine: engine, store: store, playerID: consoleCfg.PlayerID}
	p := tea.NewProgram(NewConsoleUI(backend, cat.NPCs()),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// consoleLogger writes to path, or nowhere, so log lines never tear the UI.
func consoleLogger(path string, level slog.Level) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	log := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return log, func() { _ = f.Close() }, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
