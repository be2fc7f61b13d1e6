package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finlens/ipoagent/internal/agent"
	"github.com/finlens/ipoagent/internal/api"
	"github.com/finlens/ipoagent/internal/config"
	"github.com/finlens/ipoagent/internal/embedding"
	"github.com/finlens/ipoagent/internal/llm"
	"github.com/finlens/ipoagent/internal/metricstore"
	"github.com/finlens/ipoagent/internal/pipeline"
	"github.com/finlens/ipoagent/internal/vectorstore"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	chat := llm.NewClient(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL)
	embedder := embedding.NewClient(cfg.EmbedBaseURL, cfg.EmbedAPIKey, cfg.EmbedModel)

	qdrant := vectorstore.NewQdrant(cfg.QdrantURL, cfg.QdrantAPIKey, cfg.QdrantCollection, cfg.EmbedDim, embedder)
	if err := qdrant.EnsureCollection(ctx); err != nil {
		log.Error("qdrant setup failed", "error", err)
		os.Exit(1)
	}

	metrics, err := metricstore.NewStore(cfg.MetricDBPath)
	if err != nil {
		log.Error("metric store setup failed", "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, metrics, qdrant, log)
	orch.Start(ctx)

	// Initialize query agents.
	gateway := vectorstore.NewGateway(qdrant, log)
	dispatcher := agent.NewDispatcher(chat, metrics, gateway, log)
	charts := agent.NewChartHandler(chat, gateway, log)

	// Initialize HTTP server.
	srv := api.NewServer(orch, dispatcher, charts, metrics, chat, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		chat.Close()
		embedder.Close()
		qdrant.Close()
		metrics.Close()
	}()

	log.Info("starting ipoagent", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
