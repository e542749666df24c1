package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/praxisapp/praxis/internal/auth"
	"github.com/praxisapp/praxis/internal/types"
	"github.com/praxisapp/praxis/internal/validation"
)

// Register handles POST /api/v1/auth/register. New accounts are seeded
// with the default stat set so the progression surface works immediately.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	var c validation.Collector
	c.Add(validation.ValidateRequired("email", req.Email))
	c.Add(validation.ValidateEmail("email", req.Email))
	c.Add(validation.ValidateMinLength("password", req.Password, 8))
	c.Add(validation.ValidateMaxLength("display_name", req.DisplayName, 100))
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("password hashing failed", "error", err)
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.store.CreateUser(r.Context(), email, hash, req.DisplayName)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}

	if err := h.store.SeedDefaultStats(r.Context(), user.ID); err != nil {
		slog.Error("seeding default stats failed", "error", err, "user_id", user.ID)
	}

	token, expiresAt, err := h.authn.IssueToken(user.ID, user.Email)
	if err != nil {
		slog.Error("token issue failed", "error", err, "user_id", user.ID)
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusCreated, types.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      *user,
	})
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		// Same response for unknown email and bad password
		WriteProblem(w, r, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		WriteProblem(w, r, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, expiresAt, err := h.authn.IssueToken(user.ID, user.Email)
	if err != nil {
		slog.Error("token issue failed", "error", err, "user_id", user.ID)
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, types.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      *user,
	})
}

// Me handles GET /api/v1/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUser(r.Context(), MustUserID(r.Context()))
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// maxAvatarSize caps avatar uploads at 5 MiB.
const maxAvatarSize = 5 << 20

// UploadAvatar handles PUT /api/v1/me/avatar. The body is the raw image;
// Content-Type selects the stored format.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID := MustUserID(r.Context())

	contentType := r.Header.Get("Content-Type")
	if contentType != "image/png" && contentType != "image/jpeg" {
		WriteProblem(w, r, http.StatusBadRequest, "Content-Type must be image/png or image/jpeg")
		return
	}
	if r.ContentLength > maxAvatarSize {
		WriteProblem(w, r, http.StatusBadRequest, "Avatar exceeds maximum size of 5 MiB")
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxAvatarSize)
	url, err := h.uploader.Upload(r.Context(), userID, contentType, body, r.ContentLength)
	if err != nil {
		slog.Error("avatar upload failed", "error", err, "user_id", userID)
		WriteProblem(w, r, http.StatusServiceUnavailable, "Avatar storage unavailable")
		return
	}

	if err := h.store.UpdateAvatarURL(r.Context(), userID, url); err != nil {
		MapDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"avatar_url": url})
}
