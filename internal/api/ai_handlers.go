package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/praxisapp/praxis/internal/genai"
	"github.com/praxisapp/praxis/internal/store"
)

// defaultSuggestionCount is used when the request does not ask for a
// specific number of suggestions.
const defaultSuggestionCount = 3

// SuggestTasks handles GET /api/v1/ai/task-suggestions. Suggestions are
// returned, not persisted; the client decides what becomes a task.
func (h *Handler) SuggestTasks(w http.ResponseWriter, r *http.Request) {
	userID := MustUserID(r.Context())

	count := defaultSuggestionCount
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 10 {
			WriteProblem(w, r, http.StatusBadRequest, "count must be between 1 and 10")
			return
		}
		count = n
	}

	uc, err := h.buildUserContext(r, userID)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}

	suggestions, err := h.generator.SuggestTasks(r.Context(), *uc, count)
	if err != nil {
		slog.Error("task suggestion failed", "error", err, "user_id", userID)
		WriteProblem(w, r, http.StatusServiceUnavailable, "Content generation unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]genai.TaskSuggestion{"suggestions": suggestions})
}

// buildUserContext assembles the prompt context for a user: display name,
// stat levels, and today's focus when one is set.
func (h *Handler) buildUserContext(r *http.Request, userID string) (*genai.UserContext, error) {
	user, err := h.store.GetUser(r.Context(), userID)
	if err != nil {
		return nil, err
	}

	stats, err := h.store.ListStats(r.Context(), userID)
	if err != nil {
		return nil, err
	}

	uc := &genai.UserContext{
		DisplayName: user.DisplayName,
		Stats:       statContexts(stats),
	}

	focus, err := h.store.GetFocusByWeekday(r.Context(), userID, int(time.Now().UTC().Weekday()))
	if err == nil {
		uc.FocusName = focus.Name
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	return uc, nil
}

// WeeklySummary handles GET /api/v1/summary/weekly. The recap covers the
// last seven days of completed tasks and finalized journal tags.
func (h *Handler) WeeklySummary(w http.ResponseWriter, r *http.Request) {
	userID := MustUserID(r.Context())

	user, err := h.store.GetUser(r.Context(), userID)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}

	stats, err := h.store.ListStats(r.Context(), userID)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}

	wc := genai.WeeklyContext{
		DisplayName:    user.DisplayName,
		Stats:          statContexts(stats),
		CompletedTasks: []string{},
		JournalTags:    []string{},
	}

	since := time.Now().UTC().AddDate(0, 0, -7)

	tasks, err := h.store.ListTasks(r.Context(), userID, "completed")
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	for _, t := range tasks {
		if t.CompletedAt != nil && t.CompletedAt.After(since) {
			wc.CompletedTasks = append(wc.CompletedTasks, t.Title)
		}
	}

	journals, err := h.store.ListJournals(r.Context(), userID, 7)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	for _, j := range journals {
		wc.JournalTags = append(wc.JournalTags, j.Tags...)
	}

	summary, err := h.generator.WeeklySummary(r.Context(), wc)
	if err != nil {
		slog.Error("weekly summary failed", "error", err, "user_id", userID)
		WriteProblem(w, r, http.StatusServiceUnavailable, "Content generation unavailable")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
