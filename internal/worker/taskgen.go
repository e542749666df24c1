// Package worker runs the scheduled generation loop that keeps each
// user supplied with fresh AI task suggestions.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/praxisapp/praxis/internal/genai"
	"github.com/praxisapp/praxis/internal/store"
	"github.com/praxisapp/praxis/internal/types"
)

// TaskGenStore defines the store operations needed by the generation worker.
type TaskGenStore interface {
	ListUserIDs(ctx context.Context) ([]string, error)
	GetUser(ctx context.Context, id string) (*types.User, error)
	ListStats(ctx context.Context, userID string) ([]types.Stat, error)
	GetFocusByWeekday(ctx context.Context, userID string, weekday int) (*types.Focus, error)
	CreateTask(ctx context.Context, userID string, req types.CreateTaskRequest) (*types.Task, error)
}

// TaskGenWorker periodically generates AI task suggestions for every user
// and persists them as pending tasks.
type TaskGenWorker struct {
	store     TaskGenStore
	generator genai.Generator
	interval  time.Duration
	count     int
}

// NewTaskGenWorker creates a worker with the given store, generator,
// interval, and per-user suggestion count.
func NewTaskGenWorker(s TaskGenStore, g genai.Generator, interval time.Duration, count int) *TaskGenWorker {
	if count < 1 {
		count = 1
	}
	return &TaskGenWorker{
		store:     s,
		generator: g,
		interval:  interval,
		count:     count,
	}
}

// Run starts the worker loop. Blocks until ctx is cancelled.
// Does NOT run immediately on start; the first batch lands one interval in.
func (w *TaskGenWorker) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "task-generation",
		"interval", w.interval.String(),
		"count", w.count,
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "task-generation",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single generation cycle over every user. One user's
// failure is logged and skipped so the rest of the batch still runs.
func (w *TaskGenWorker) RunOnce(ctx context.Context) {
	start := time.Now()

	userIDs, err := w.store.ListUserIDs(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("generation cycle failed",
			"component", "worker",
			"action", "list_users_failed",
			"error", err,
		)
		return
	}

	var generated int
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return
		}
		n, err := w.generateForUser(ctx, userID)
		if err != nil {
			slog.Warn("generation failed for user",
				"component", "worker",
				"action", "generate_failed",
				"user_id", userID,
				"error", err,
			)
			continue
		}
		generated += n
	}

	slog.Info("generation cycle completed",
		"component", "worker",
		"action", "generate_complete",
		"users", len(userIDs),
		"tasks_created", generated,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// generateForUser builds one user's prompt context, asks the generator
// for suggestions, and persists each as a pending AI task.
func (w *TaskGenWorker) generateForUser(ctx context.Context, userID string) (int, error) {
	user, err := w.store.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	stats, err := w.store.ListStats(ctx, userID)
	if err != nil {
		return 0, err
	}

	uc := genai.UserContext{
		DisplayName: user.DisplayName,
	}
	statNames := make(map[string]string, len(stats))
	for _, s := range stats {
		uc.Stats = append(uc.Stats, genai.StatContext{ID: s.ID, Name: s.Name, Level: s.CurrentLevel})
		statNames[normalizeName(s.Name)] = s.ID
	}

	var focusStatID string
	focus, err := w.store.GetFocusByWeekday(ctx, userID, int(time.Now().UTC().Weekday()))
	if err == nil {
		uc.FocusName = focus.Name
		focusStatID = focus.StatID
	} else if !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}

	suggestions, err := w.generator.SuggestTasks(ctx, uc, w.count)
	if err != nil {
		return 0, err
	}

	var created int
	for _, sug := range suggestions {
		req := types.CreateTaskRequest{
			Title:       sug.Title,
			Notes:       sug.Notes,
			Source:      types.SourceAI,
			EstimatedXP: sug.SuggestedXP,
		}
		if id, ok := statNames[normalizeName(sug.StatName)]; ok {
			req.LinkedStatIDs = []string{id}
		} else if focusStatID != "" {
			req.LinkedStatIDs = []string{focusStatID}
		}

		if _, err := w.store.CreateTask(ctx, userID, req); err != nil {
			slog.Warn("persisting suggestion failed",
				"component", "worker",
				"user_id", userID,
				"title", sug.Title,
				"error", err,
			)
			continue
		}
		created++
	}
	return created, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
