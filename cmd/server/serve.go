package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/RichardoC/bioexpert/internal/api"
	"github.com/RichardoC/bioexpert/internal/db"
	"github.com/RichardoC/bioexpert/internal/format"
	"github.com/RichardoC/bioexpert/internal/llm"
	"github.com/RichardoC/bioexpert/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat web server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var conversations store.Store
	if cfg.DatabaseDSN == "" {
		memory := store.NewMemory(llm.SystemPrompt,
			store.WithIdleTimeout(cfg.SessionIdle),
			store.WithMaxSessions(cfg.MaxSessions))
		if cfg.SessionIdle > 0 {
			go sweepSessions(ctx, memory, cfg.SessionIdle/4, logger)
		}
		conversations = memory
	} else {
		database, err := db.New(cfg.DatabaseDSN, llm.SystemPrompt)
		if err != nil {
			logger.Fatal("failed to initialize database",
				zap.Error(err),
				zap.String("dsn", cfg.DatabaseDSN))
		}
		defer database.Close()
		conversations = database
	}

	llmService := llm.New(cfg.LLM(), logger)
	normalizer := format.New(format.WithMaxPasses(cfg.NormalizePasses))

	handler, err := api.NewHandler(conversations, llmService, normalizer, logger)
	if err != nil {
		logger.Fatal("failed to initialize HTTP handler", zap.Error(err))
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Completions can take a while.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.String("addr", cfg.Addr),
			zap.String("model", cfg.Model),
			zap.Bool("sqlite", cfg.DatabaseDSN != ""))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
			return err
		}
	}
	return nil
}

func sweepSessions(ctx context.Context, memory *store.Memory, interval time.Duration, logger *zap.Logger) {
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := memory.Sweep(); removed > 0 {
				logger.Info("Dropped idle sessions",
					zap.Int("removed", removed),
					zap.Int("remaining", memory.Sessions()))
			}
		}
	}
}
