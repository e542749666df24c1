package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/praxisapp/praxis/internal/progression"
	"github.com/praxisapp/praxis/internal/types"
	"github.com/praxisapp/praxis/internal/validation"
)

// QuestRequest creates a quest.
type QuestRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	XP            int      `json:"xp"`
	LinkedStatIDs []string `json:"linked_stat_ids,omitempty"`
}

// CreateQuest handles POST /api/v1/quests.
func (h *Handler) CreateQuest(w http.ResponseWriter, r *http.Request) {
	var req QuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	var c validation.Collector
	c.Add(validation.ValidateRequired("title", req.Title))
	c.Add(validation.ValidateMaxLength("title", req.Title, 200))
	c.Add(validation.ValidateIntRange("xp", req.XP, 0, 5000))
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	userID := MustUserID(r.Context())
	for _, statID := range req.LinkedStatIDs {
		if _, err := h.store.GetStat(r.Context(), userID, statID); err != nil {
			MapDomainError(w, r, err)
			return
		}
	}

	quest, err := h.store.CreateQuest(r.Context(), userID, req.Title, req.Description, req.XP, req.LinkedStatIDs)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, quest)
}

// ListQuests handles GET /api/v1/quests.
func (h *Handler) ListQuests(w http.ResponseWriter, r *http.Request) {
	quests, err := h.store.ListQuests(r.Context(), MustUserID(r.Context()))
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quests)
}

// GetQuest handles GET /api/v1/quests/{id}.
func (h *Handler) GetQuest(w http.ResponseWriter, r *http.Request) {
	quest, err := h.store.GetQuest(r.Context(), MustUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quest)
}

// CompleteQuestResponse is the outcome of completing a quest.
type CompleteQuestResponse struct {
	Quest   types.Quest          `json:"quest"`
	Awards  []types.AppliedAward `json:"awards"`
	Skipped []types.SkippedAward `json:"skipped,omitempty"`
}

// CompleteQuest handles POST /api/v1/quests/{id}/complete. The quest's XP
// is granted to every linked stat; a stat that cannot take the grant is
// reported as skipped.
func (h *Handler) CompleteQuest(w http.ResponseWriter, r *http.Request) {
	userID := MustUserID(r.Context())

	quest, err := h.store.CompleteQuest(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		MapDomainError(w, r, err)
		return
	}

	resp := CompleteQuestResponse{Quest: *quest, Awards: []types.AppliedAward{}}
	for _, award := range progression.UniformAwards(quest.LinkedStatIDs, quest.XP) {
		applied, skipped := h.grantStatAward(r, userID, award, types.GrantSourceQuest, quest.ID)
		if skipped != nil {
			resp.Skipped = append(resp.Skipped, *skipped)
			continue
		}
		resp.Awards = append(resp.Awards, *applied)
	}

	writeJSON(w, http.StatusOK, resp)
}

// ExperimentRequest creates an experiment.
type ExperimentRequest struct {
	Title      string `json:"title"`
	Hypothesis string `json:"hypothesis,omitempty"`
	StartDate  string `json:"start_date,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
}

// CreateExperiment handles POST /api/v1/experiments.
func (h *Handler) CreateExperiment(w http.ResponseWriter, r *http.Request) {
	var req ExperimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	var c validation.Collector
	c.Add(validation.ValidateRequired("title", req.Title))
	c.Add(validation.ValidateMaxLength("title", req.Title, 200))
	if req.StartDate != "" {
		c.Add(validation.ValidateDate("start_date", req.StartDate))
	}
	if req.EndDate != "" {
		c.Add(validation.ValidateDate("end_date", req.EndDate))
	}
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	exp, err := h.store.CreateExperiment(r.Context(), MustUserID(r.Context()), req.Title, req.Hypothesis, req.StartDate, req.EndDate)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, exp)
}

// ListExperiments handles GET /api/v1/experiments.
func (h *Handler) ListExperiments(w http.ResponseWriter, r *http.Request) {
	exps, err := h.store.ListExperiments(r.Context(), MustUserID(r.Context()))
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exps)
}
