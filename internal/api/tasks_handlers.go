package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/praxisapp/praxis/internal/progression"
	"github.com/praxisapp/praxis/internal/store"
	"github.com/praxisapp/praxis/internal/types"
	"github.com/praxisapp/praxis/internal/validation"
)

var taskSources = []string{
	string(types.SourceAI),
	string(types.SourceQuest),
	string(types.SourceExperiment),
	string(types.SourceTodo),
	string(types.SourceAdhoc),
	string(types.SourceExternal),
}

// CreateTask handles POST /api/v1/tasks.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req types.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	var c validation.Collector
	c.Add(validation.ValidateRequired("title", req.Title))
	c.Add(validation.ValidateMaxLength("title", req.Title, 200))
	c.Add(validation.ValidateEnum("source", string(req.Source), taskSources))
	c.Add(validation.ValidateIntRange("estimated_xp", req.EstimatedXP, 0, 1000))
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	task, err := h.store.CreateTask(r.Context(), MustUserID(r.Context()), req)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// ListTasks handles GET /api/v1/tasks. An optional ?status= query filters
// by lifecycle state.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	status := types.TaskStatus(r.URL.Query().Get("status"))
	if status != "" {
		if err := validation.ValidateEnum("status", string(status), []string{
			string(types.TaskPending), string(types.TaskCompleted), string(types.TaskSkipped),
		}); err != nil {
			WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{*err})
			return
		}
	}

	tasks, err := h.store.ListTasks(r.Context(), MustUserID(r.Context()), status)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// GetTask handles GET /api/v1/tasks/{id}.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.store.GetTask(r.Context(), MustUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// CompleteTask handles POST /api/v1/tasks/{id}/complete. The status
// transition happens first; stat awards are then resolved and granted
// one by one. An award that cannot be applied is reported as skipped,
// never rolled back into an uncompleted task.
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	userID := MustUserID(r.Context())

	task, err := h.store.SetTaskStatus(r.Context(), userID, chi.URLParam(r, "id"), types.TaskCompleted)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}

	var adhoc *types.AdhocTask
	if task.AdhocTaskID != "" {
		adhoc, err = h.store.GetAdhocTask(r.Context(), userID, task.AdhocTaskID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			MapDomainError(w, r, err)
			return
		}
	}

	var focusStatID string
	if task.FocusID != "" {
		focus, err := h.store.GetFocus(r.Context(), userID, task.FocusID)
		if err == nil {
			focusStatID = focus.StatID
		} else if !errors.Is(err, store.ErrNotFound) {
			MapDomainError(w, r, err)
			return
		}
	}

	resp := types.CompleteTaskResponse{Task: *task}
	awards := progression.ResolveAwards(*task, adhoc, focusStatID)
	for _, award := range awards {
		applied, skipped := h.grantStatAward(r, userID, award, types.GrantSourceTask, task.ID)
		if skipped != nil {
			resp.Skipped = append(resp.Skipped, *skipped)
			continue
		}
		resp.Awards = append(resp.Awards, *applied)
	}

	writeJSON(w, http.StatusOK, resp)
}

// SkipTask handles POST /api/v1/tasks/{id}/skip. Skipping never awards XP.
func (h *Handler) SkipTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.store.SetTaskStatus(r.Context(), MustUserID(r.Context()), chi.URLParam(r, "id"), types.TaskSkipped)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// grantStatAward runs one stat award through the ledger. A failed grant
// becomes a SkippedAward so sibling awards still land.
func (h *Handler) grantStatAward(r *http.Request, userID string, award progression.Award, sourceType types.GrantSourceType, sourceID string) (*types.AppliedAward, *types.SkippedAward) {
	result, err := h.store.GrantXP(r.Context(), userID, types.EntityCharacterStat, award.StatID, award.Amount, sourceType, sourceID)
	if err != nil {
		slog.Warn("stat award failed",
			"error", err,
			"stat_id", award.StatID,
			"source_type", sourceType,
			"source_id", sourceID,
		)
		reason := "stat not found"
		if !errors.Is(err, store.ErrNotFound) {
			reason = "grant failed"
		}
		return nil, &types.SkippedAward{StatID: award.StatID, Reason: reason}
	}

	applied := &types.AppliedAward{
		StatID: award.StatID,
		Amount: award.Amount,
	}
	if result.Progression != nil {
		applied.NewTotalXP = result.Progression.NewTotalXP
		applied.NewLevel = result.Progression.NewLevel
		applied.LeveledUp = result.Progression.LeveledUp
		applied.LevelsGained = result.Progression.LevelsGained
	}
	return applied, nil
}

// AdhocTaskRequest creates an ad-hoc task definition.
type AdhocTaskRequest struct {
	Title  string `json:"title"`
	StatID string `json:"stat_id"`
	XP     int    `json:"xp"`
}

// CreateAdhocTask handles POST /api/v1/adhoc-tasks.
func (h *Handler) CreateAdhocTask(w http.ResponseWriter, r *http.Request) {
	var req AdhocTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	var c validation.Collector
	c.Add(validation.ValidateRequired("title", req.Title))
	c.Add(validation.ValidateRequired("stat_id", req.StatID))
	c.Add(validation.ValidateIntRange("xp", req.XP, 1, 1000))
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	userID := MustUserID(r.Context())
	if _, err := h.store.GetStat(r.Context(), userID, req.StatID); err != nil {
		MapDomainError(w, r, err)
		return
	}

	adhoc, err := h.store.CreateAdhocTask(r.Context(), userID, req.Title, req.StatID, req.XP)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, adhoc)
}

// ListAdhocTasks handles GET /api/v1/adhoc-tasks.
func (h *Handler) ListAdhocTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.ListAdhocTasks(r.Context(), MustUserID(r.Context()))
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// FocusRequest assigns a focus theme to a weekday.
type FocusRequest struct {
	Weekday int    `json:"weekday"`
	Name    string `json:"name"`
	StatID  string `json:"stat_id"`
}

// SetFocus handles PUT /api/v1/focuses. One focus per weekday; setting a
// weekday again replaces it.
func (h *Handler) SetFocus(w http.ResponseWriter, r *http.Request) {
	var req FocusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	var c validation.Collector
	c.Add(validation.ValidateIntRange("weekday", req.Weekday, 0, 6))
	c.Add(validation.ValidateRequired("name", req.Name))
	c.Add(validation.ValidateRequired("stat_id", req.StatID))
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	userID := MustUserID(r.Context())
	if _, err := h.store.GetStat(r.Context(), userID, req.StatID); err != nil {
		MapDomainError(w, r, err)
		return
	}

	focus, err := h.store.SetFocus(r.Context(), userID, req.Weekday, req.Name, req.StatID)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, focus)
}

// ListFocuses handles GET /api/v1/focuses.
func (h *Handler) ListFocuses(w http.ResponseWriter, r *http.Request) {
	focuses, err := h.store.ListFocuses(r.Context(), MustUserID(r.Context()))
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, focuses)
}
