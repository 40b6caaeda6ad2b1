package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmcateer/docsieve/internal/analysis"
	"github.com/dmcateer/docsieve/internal/api"
	"github.com/dmcateer/docsieve/internal/config"
	"github.com/dmcateer/docsieve/internal/llm"
	"github.com/dmcateer/docsieve/internal/pipeline"
	"github.com/dmcateer/docsieve/internal/relevance"
	"github.com/dmcateer/docsieve/internal/store"
	"github.com/dmcateer/docsieve/internal/tokens"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	counter, err := buildCounter(cfg, log)
	if err != nil {
		log.Error("tokenizer init failed", "error", err)
		os.Exit(1)
	}

	stats := llm.NewStats(time.Hour)
	var completer llm.Completer
	var client *llm.Client
	model := cfg.AnthropicModel
	if cfg.Simulation {
		log.Info("running in simulation mode, no LLM calls will be made")
		completer = llm.Simulator{}
		model = "simulator"
	} else {
		client = llm.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		completer = client
	}
	completer = llm.WithStats(completer, stats)

	selector := relevance.NewSelector(counter, cfg.MaxConcurrentCounts, log)
	engine := analysis.NewEngine(completer, counter, selector, cfg.Budgets, cfg.MaxConcurrentCalls, log)
	docs := store.New()

	orch := pipeline.NewOrchestrator(cfg, engine, docs, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, stats, model, log, cfg)

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

		if client != nil {
			client.Close()
		}
	}()

	log.Info("starting docsieve", "port", cfg.Port, "tokenizer", cfg.Tokenizer)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// buildCounter picks the token counter backend. Simulation mode always
// uses the heuristic so tests and local runs stay offline.
func buildCounter(cfg config.Config, log *slog.Logger) (tokens.Counter, error) {
	if cfg.Simulation {
		return tokens.Heuristic{}, nil
	}
	switch cfg.Tokenizer {
	case "encoder":
		return tokens.NewEncoder()
	case "remote":
		return tokens.NewRemote(cfg.AnthropicAPIKey, cfg.AnthropicModel, log), nil
	default:
		return tokens.Heuristic{}, nil
	}
}
