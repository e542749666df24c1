package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/praxisapp/praxis/internal/config"
	"github.com/praxisapp/praxis/internal/genai"
	"github.com/praxisapp/praxis/internal/progression"
	"github.com/praxisapp/praxis/internal/store"
	"github.com/praxisapp/praxis/internal/worker"
)

var generateCount int

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one task-generation batch and exit",
	Long: "Generates AI task suggestions for every user and stores them as " +
		"pending tasks. Intended for cron when the long-running worker is not wanted.",
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVar(&generateCount, "count", 0,
		"Suggestions per user (overrides config)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	db, err := store.NewSQLiteStore(cfg.Database.Path, progression.DefaultCurve())
	if err != nil {
		return err
	}
	defer db.Close()

	generator := genai.NewOpenAI(cfg.GenAI.APIKey, cfg.GenAI.Model)

	count := cfg.Worker.SuggestionCount
	if generateCount > 0 {
		count = generateCount
	}

	w := worker.NewTaskGenWorker(db, generator, time.Hour, count)

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	w.RunOnce(ctx)
	return nil
}
