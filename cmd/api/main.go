package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/parley/internal/config"
	"github.com/jwebster45206/parley/internal/handlers"
	"github.com/jwebster45206/parley/internal/logger"
	"github.com/jwebster45206/parley/internal/middleware"
	"github.com/jwebster45206/parley/internal/services"
	"github.com/jwebster45206/parley/internal/storage"
	"github.com/jwebster45206/parley/pkg/catalog"
	"github.com/jwebster45206/parley/pkg/conversation"
	"github.com/jwebster45206/parley/pkg/narrative"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Parley API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"storage_backend", cfg.StorageBackend,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName)

	cat, err := catalog.Load(cfg.DataDir)
	if err != nil {
		log.Error("Failed to load catalog", "error", err, "data_dir", cfg.DataDir)
		os.Exit(1)
	}
	log.Info("Catalog loaded", "npcs", len(cat.NPCs()), "cards", len(cat.Cards()))

	store, err := storage.Open(cfg, log)
	if err != nil {
		log.Error("Failed to open storage", "error", err)
		os.Exit(1)
	}
	if redisStore, ok := store.(*storage.RedisStorage); ok {
		waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		err := redisStore.WaitForConnection(waitCtx)
		waitCancel()
		if err != nil {
			log.Error("Failed to connect to storage", "error", err)
			os.Exit(1)
		}
	}
	log.Info("Storage connection established successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	llmService, err := services.NewLLMService(ctx, cfg, log)
	if err == nil && llmService != nil {
		err = llmService.InitModel(ctx, cfg.ModelName)
	}
	cancel()
	if err != nil {
		log.Error("Failed to initialize LLM service", "error", err, "provider", cfg.LLMProvider)
		os.Exit(1)
	}

	var narrator narrative.Narrator
	if llmService != nil {
		llmNarrator, err := narrative.NewLLMNarrator(llmService, log)
		if err != nil {
			log.Error("Failed to build narrator", "error", err)
			os.Exit(1)
		}
		narrator = llmNarrator
		log.Info("Using LLM narration", "provider", cfg.LLMProvider)
	} else {
		log.Info("No LLM provider configured, using fallback narration")
	}

	engine, err := conversation.NewEngine(conversation.Options{
		Catalog:          cat,
		Store:            store,
		Narrator:         narrator,
		NarrativeTimeout: cfg.NarrativeTimeout,
		SessionRetention: cfg.SessionRetention,
		Seed:             cfg.RNGSeed,
		Logger:           log,
	})
	if err != nil {
		log.Error("Failed to create conversation engine", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(store, llmService, log))

	conversationHandler := handlers.NewConversationHandler(engine, log)
	mux.Handle("/v1/conversations", conversationHandler)
	mux.Handle("/v1/conversations/", conversationHandler)

	npcHandler := handlers.NewNPCHandler(cat, log)
	mux.Handle("/v1/npcs", npcHandler)
	mux.Handle("/v1/npcs/", npcHandler)

	mux.Handle("/v1/players/", handlers.NewPlayerHandler(store, log))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.LoggerWith(log)(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15*time.Second + cfg.NarrativeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}
	if closer, ok := llmService.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Error("Error closing LLM client", "error", err)
		}
	}

	log.Info("Server exited")
}
