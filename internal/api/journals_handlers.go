package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/praxisapp/praxis/internal/genai"
	"github.com/praxisapp/praxis/internal/progression"
	"github.com/praxisapp/praxis/internal/types"
	"github.com/praxisapp/praxis/internal/validation"
)

// CreateJournal handles POST /api/v1/journals. One entry per date; a
// second create for the same date is a conflict.
func (h *Handler) CreateJournal(w http.ResponseWriter, r *http.Request) {
	var req types.CreateJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	var c validation.Collector
	c.Add(validation.ValidateRequired("entry_date", req.EntryDate))
	c.Add(validation.ValidateDate("entry_date", req.EntryDate))
	c.Add(validation.ValidateRequired("content", req.Content))
	c.Add(validation.ValidateMaxLength("content", req.Content, 20000))
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	journal, err := h.store.CreateJournal(r.Context(), MustUserID(r.Context()), req)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, journal)
}

// ListJournals handles GET /api/v1/journals with an optional ?limit=.
func (h *Handler) ListJournals(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			WriteProblem(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	journals, err := h.store.ListJournals(r.Context(), MustUserID(r.Context()), limit)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, journals)
}

// GetJournal handles GET /api/v1/journals/{id}.
func (h *Handler) GetJournal(w http.ResponseWriter, r *http.Request) {
	journal, err := h.store.GetJournal(r.Context(), MustUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, journal)
}

// FinalizeJournal handles POST /api/v1/journals/{id}/finalize. The entry
// is analyzed by the content generator, stamped final with its summary
// and tags, and the proposed stat awards run through the ledger. Analysis
// failure finalizes the entry without enrichment; it never blocks the
// transition.
func (h *Handler) FinalizeJournal(w http.ResponseWriter, r *http.Request) {
	userID := MustUserID(r.Context())

	journal, err := h.store.GetJournal(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		MapDomainError(w, r, err)
		return
	}

	stats, err := h.store.ListStats(r.Context(), userID)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}

	var summary string
	var tags []string
	var proposed []genai.JournalAward

	analysis, err := h.generator.AnalyzeJournal(r.Context(), journal.Content, journal.Mood, statContexts(stats))
	if err != nil {
		slog.Warn("journal analysis failed", "error", err, "journal_id", journal.ID)
	} else {
		summary = analysis.Summary
		tags = analysis.Tags
		proposed = analysis.Awards
	}

	finalized, err := h.store.FinalizeJournal(r.Context(), userID, journal.ID, summary, tags)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}

	resp := types.FinalizeJournalResponse{Journal: *finalized}
	for _, ja := range proposed {
		statID, ok := statIDByName(stats, ja.StatName)
		if !ok {
			resp.Skipped = append(resp.Skipped, types.SkippedAward{StatID: ja.StatName, Reason: "unknown stat"})
			continue
		}
		award := progression.Award{StatID: statID, Amount: ja.XP}
		applied, skipped := h.grantStatAward(r, userID, award, types.GrantSourceJournal, finalized.ID)
		if skipped != nil {
			resp.Skipped = append(resp.Skipped, *skipped)
			continue
		}
		resp.Awards = append(resp.Awards, *applied)
	}

	writeJSON(w, http.StatusOK, resp)
}

// statContexts converts stats to the slice the prompts need.
func statContexts(stats []types.Stat) []genai.StatContext {
	out := make([]genai.StatContext, 0, len(stats))
	for _, s := range stats {
		out = append(out, genai.StatContext{ID: s.ID, Name: s.Name, Level: s.CurrentLevel})
	}
	return out
}

// statIDByName resolves a generator-proposed stat name to an owned stat.
func statIDByName(stats []types.Stat, name string) (string, bool) {
	for _, s := range stats {
		if strings.EqualFold(s.Name, name) {
			return s.ID, true
		}
	}
	return "", false
}
