package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/praxisapp/praxis/internal/types"
	"github.com/praxisapp/praxis/internal/validation"
)

// FamilyMemberRequest creates a family member.
type FamilyMemberRequest struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
}

// CreateFamilyMember handles POST /api/v1/family.
func (h *Handler) CreateFamilyMember(w http.ResponseWriter, r *http.Request) {
	var req FamilyMemberRequest
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

	member, err := h.store.CreateFamilyMember(r.Context(), MustUserID(r.Context()), req.Name, req.Relationship)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

// ListFamilyMembers handles GET /api/v1/family.
func (h *Handler) ListFamilyMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.store.ListFamilyMembers(r.Context(), MustUserID(r.Context()))
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// GetFamilyMember handles GET /api/v1/family/{id}.
func (h *Handler) GetFamilyMember(w http.ResponseWriter, r *http.Request) {
	member, err := h.store.GetFamilyMember(r.Context(), MustUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

var grantEntityTypes = []string{
	string(types.EntityCharacterStat),
	string(types.EntityFamilyMember),
	string(types.EntityGoal),
	string(types.EntityProject),
	string(types.EntityAdventure),
}

// ManualGrant handles POST /api/v1/xp-grants: a hand-issued XP award to
// any grantable entity.
func (h *Handler) ManualGrant(w http.ResponseWriter, r *http.Request) {
	var req types.ManualGrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	var c validation.Collector
	c.Add(validation.ValidateEnum("entity_type", string(req.EntityType), grantEntityTypes))
	c.Add(validation.ValidateRequired("entity_id", req.EntityID))
	c.Add(validation.ValidateIntRange("amount", req.Amount, -1000, 1000))
	if req.Amount == 0 {
		c.Add(&validation.ValidationError{Field: "amount", Message: "must not be zero"})
	}
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	result, err := h.store.GrantXP(r.Context(), MustUserID(r.Context()), req.EntityType, req.EntityID, req.Amount, types.GrantSourceManual, "")
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ListXPGrants handles GET /api/v1/xp-grants with an optional ?limit=.
func (h *Handler) ListXPGrants(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			WriteProblem(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	grants, err := h.store.ListXPGrants(r.Context(), MustUserID(r.Context()), limit)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grants)
}
