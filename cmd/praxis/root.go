package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/praxisapp/praxis/internal/api"
	"github.com/praxisapp/praxis/internal/auth"
	"github.com/praxisapp/praxis/internal/avatar"
	"github.com/praxisapp/praxis/internal/config"
	"github.com/praxisapp/praxis/internal/genai"
	"github.com/praxisapp/praxis/internal/progression"
	"github.com/praxisapp/praxis/internal/store"
	"github.com/praxisapp/praxis/internal/worker"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "praxis",
	Short: "Praxis - gamified personal development service",
	RunE:  run,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func run(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)
	slog.Info("configuration loaded")

	db, err := store.NewSQLiteStore(cfg.Database.Path, progression.DefaultCurve())
	if err != nil {
		return err
	}
	slog.Info("store initialized", "path", cfg.Database.Path)

	generator := genai.NewOpenAI(cfg.GenAI.APIKey, cfg.GenAI.Model)
	slog.Info("generator initialized", "model", cfg.GenAI.Model)

	authn, err := auth.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, time.Duration(cfg.Auth.TokenTTL))
	if err != nil {
		return err
	}

	uploader, err := avatar.NewUploader(cfg.Avatar)
	if err != nil {
		return err
	}

	handler := api.NewHandler(db, generator, authn, uploader, Version)
	router := api.NewRouter(handler)
	slog.Info("router initialized")

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	var wg sync.WaitGroup
	taskGen := worker.NewTaskGenWorker(db, generator,
		time.Duration(cfg.Worker.GenerationInterval), cfg.Worker.SuggestionCount)
	startWorker(ctx, &wg, "task-generation", taskGen.Run)

	go func() {
		slog.Info("server starting", "address", addr)
		// ErrServerClosed is the expected error when Shutdown() is called gracefully.
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown initiated")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	// Drain in-flight requests before stopping workers and the store
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	wg.Wait()

	if err := db.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// startWorker launches a background worker goroutine that respects context cancellation.
// Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("worker started", "worker", name)
		fn(ctx)
		slog.Info("worker stopped", "worker", name)
	}()
}
