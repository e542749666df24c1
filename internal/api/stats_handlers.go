package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/praxisapp/praxis/internal/progression"
	"github.com/praxisapp/praxis/internal/types"
	"github.com/praxisapp/praxis/internal/validation"
)

// ListStats handles GET /api/v1/stats.
func (h *Handler) ListStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.ListStats(r.Context(), MustUserID(r.Context()))
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// CreateStat handles POST /api/v1/stats.
func (h *Handler) CreateStat(w http.ResponseWriter, r *http.Request) {
	var req types.CreateStatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	var c validation.Collector
	c.Add(validation.ValidateRequired("name", req.Name))
	c.Add(validation.ValidateMaxLength("name", req.Name, 100))
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	stat, err := h.store.CreateStat(r.Context(), MustUserID(r.Context()), req.Name)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stat)
}

// GetStat handles GET /api/v1/stats/{id}.
func (h *Handler) GetStat(w http.ResponseWriter, r *http.Request) {
	stat, err := h.store.GetStat(r.Context(), MustUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stat)
}

// DeleteStat handles DELETE /api/v1/stats/{id}.
func (h *Handler) DeleteStat(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteStat(r.Context(), MustUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		MapDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LevelUpResponse reports the outcome of an explicit level-up.
type LevelUpResponse struct {
	Stat   types.Stat         `json:"stat"`
	Result progression.Result `json:"result"`
}

// LevelUpStat handles POST /api/v1/stats/{id}/level-up. The stat must
// already hold enough XP; XP is never granted here.
func (h *Handler) LevelUpStat(w http.ResponseWriter, r *http.Request) {
	userID := MustUserID(r.Context())
	statID := chi.URLParam(r, "id")

	stat, err := h.store.GetStat(r.Context(), userID, statID)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}

	resp, err := h.levelUp(r, userID, stat)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// LevelUpAllResponse reports the outcome of leveling up every ready stat.
type LevelUpAllResponse struct {
	LeveledUp []LevelUpResponse `json:"leveled_up"`
	Skipped   int               `json:"skipped"`
}

// LevelUpAll handles POST /api/v1/stats/level-up-all. Stats without a
// pending level-up are skipped, not errors.
func (h *Handler) LevelUpAll(w http.ResponseWriter, r *http.Request) {
	userID := MustUserID(r.Context())

	stats, err := h.store.ListStats(r.Context(), userID)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}

	resp := LevelUpAllResponse{LeveledUp: []LevelUpResponse{}}
	for i := range stats {
		one, err := h.levelUp(r, userID, &stats[i])
		if err != nil {
			if errors.Is(err, progression.ErrNotReadyForLevelUp) {
				resp.Skipped++
				continue
			}
			MapDomainError(w, r, err)
			return
		}
		resp.LeveledUp = append(resp.LeveledUp, *one)
	}
	writeJSON(w, http.StatusOK, resp)
}

// levelUp resolves and persists a level-up for one stat. The new level's
// title comes from the content generator; a generation failure leaves the
// title empty but never fails the level-up.
func (h *Handler) levelUp(r *http.Request, userID string, stat *types.Stat) (*LevelUpResponse, error) {
	result, err := h.store.Curve().ResolveLevelUp(stat.TotalXP, stat.CurrentLevel)
	if err != nil {
		return nil, err
	}

	var titlePtr *string
	title, err := h.generator.LevelTitle(r.Context(), stat.Name, result.NewLevel)
	if err != nil {
		slog.Warn("level title generation failed", "error", err, "stat_id", stat.ID)
	} else if title != "" {
		titlePtr = &title
		if n := len(result.LevelEvents); n > 0 {
			result.LevelEvents[n-1].Title = title
		}
	}

	if err := h.store.UpdateStatProgression(r.Context(), userID, stat.ID, result.NewTotalXP, result.NewLevel, titlePtr); err != nil {
		return nil, err
	}

	updated, err := h.store.GetStat(r.Context(), userID, stat.ID)
	if err != nil {
		return nil, err
	}
	return &LevelUpResponse{Stat: *updated, Result: result}, nil
}

// SetProgression handles PUT /api/v1/stats/{id}/progression. The supplied
// pair must agree with the threshold curve or nothing is written.
func (h *Handler) SetProgression(w http.ResponseWriter, r *http.Request) {
	userID := MustUserID(r.Context())
	statID := chi.URLParam(r, "id")

	var req types.SetProgressionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if _, err := h.store.GetStat(r.Context(), userID, statID); err != nil {
		MapDomainError(w, r, err)
		return
	}

	if err := h.store.Curve().Validate(req.TotalXP, req.CurrentLevel); err != nil {
		MapDomainError(w, r, err)
		return
	}

	if err := h.store.UpdateStatProgression(r.Context(), userID, statID, req.TotalXP, req.CurrentLevel, nil); err != nil {
		MapDomainError(w, r, err)
		return
	}

	stat, err := h.store.GetStat(r.Context(), userID, statID)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stat)
}
