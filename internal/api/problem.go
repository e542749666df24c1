package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/praxisapp/praxis/internal/auth"
	"github.com/praxisapp/praxis/internal/progression"
	"github.com/praxisapp/praxis/internal/store"
	"github.com/praxisapp/praxis/internal/validation"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

// problemTypes maps HTTP status codes to RFC 7807 type URIs and titles.
var problemTypes = map[int]struct {
	typeURI string
	title   string
}{
	http.StatusUnauthorized: {
		typeURI: "https://praxis.app/errors/unauthorized",
		title:   "Unauthorized",
	},
	http.StatusBadRequest: {
		typeURI: "https://praxis.app/errors/bad-request",
		title:   "Bad Request",
	},
	http.StatusNotFound: {
		typeURI: "https://praxis.app/errors/not-found",
		title:   "Not Found",
	},
	http.StatusInternalServerError: {
		typeURI: "https://praxis.app/errors/internal-error",
		title:   "Internal Server Error",
	},
	http.StatusUnprocessableEntity: {
		typeURI: "https://praxis.app/errors/validation-error",
		title:   "Validation Error",
	},
	http.StatusServiceUnavailable: {
		typeURI: "https://praxis.app/errors/service-unavailable",
		title:   "Service Unavailable",
	},
	http.StatusConflict: {
		typeURI: "https://praxis.app/errors/conflict",
		title:   "Conflict",
	},
	http.StatusForbidden: {
		typeURI: "https://praxis.app/errors/forbidden",
		title:   "Forbidden",
	},
}

// WriteProblem writes an RFC 7807 Problem Details response.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	pt, ok := problemTypes[status]
	if !ok {
		pt = struct {
			typeURI string
			title   string
		}{
			typeURI: "https://praxis.app/errors/unknown",
			title:   http.StatusText(status),
		}
	}

	p := Problem{
		Type:     pt.typeURI,
		Title:    pt.title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("failed to encode problem response", "error", err)
	}
}

// ProblemWithErrors extends Problem with validation error details.
type ProblemWithErrors struct {
	Problem
	Errors []validation.ValidationError `json:"errors,omitempty"`
}

// WriteProblemWithErrors writes a 422 Problem Details response with field errors.
func WriteProblemWithErrors(w http.ResponseWriter, r *http.Request, detail string, errs []validation.ValidationError) {
	pt := problemTypes[http.StatusUnprocessableEntity]

	p := ProblemWithErrors{
		Problem: Problem{
			Type:     pt.typeURI,
			Title:    pt.title,
			Status:   http.StatusUnprocessableEntity,
			Detail:   detail,
			Instance: r.URL.Path,
		},
		Errors: errs,
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("failed to encode problem response", "error", err)
	}
}

// MapDomainError converts domain errors to Problem Details responses.
func MapDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
	case errors.Is(err, store.ErrDuplicateEmail):
		WriteProblem(w, r, http.StatusConflict, "An account with this email already exists")
	case errors.Is(err, store.ErrDuplicateStat):
		WriteProblem(w, r, http.StatusConflict, "A stat with this name already exists")
	case errors.Is(err, store.ErrDuplicateEntry):
		WriteProblem(w, r, http.StatusConflict, "A journal entry for this date already exists")
	case errors.Is(err, store.ErrNotPending):
		WriteProblem(w, r, http.StatusConflict, "Already resolved")
	case errors.Is(err, store.ErrAlreadyFinal):
		WriteProblem(w, r, http.StatusConflict, "Journal entry is already finalized")
	case errors.Is(err, progression.ErrNotReadyForLevelUp):
		WriteProblem(w, r, http.StatusBadRequest, "Not enough XP to level up")
	case errors.Is(err, progression.ErrInconsistentProgression):
		WriteProblem(w, r, http.StatusBadRequest, "Level and XP total do not agree with the progression curve")
	case errors.Is(err, progression.ErrInvalidInput):
		WriteProblem(w, r, http.StatusBadRequest, "Invalid progression values")
	case errors.Is(err, auth.ErrInvalidCredentials):
		WriteProblem(w, r, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
		WriteProblem(w, r, http.StatusUnauthorized, "Missing or invalid token")
	default:
		// Never expose internal error details to client
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
	}
}
