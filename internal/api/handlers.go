package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/praxisapp/praxis/internal/auth"
	"github.com/praxisapp/praxis/internal/avatar"
	"github.com/praxisapp/praxis/internal/genai"
	"github.com/praxisapp/praxis/internal/progression"
	"github.com/praxisapp/praxis/internal/store"
	"github.com/praxisapp/praxis/internal/types"
)

// Store is the persistence surface the handlers depend on.
type Store interface {
	// Users
	CreateUser(ctx context.Context, email, passwordHash, displayName string) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	GetUser(ctx context.Context, id string) (*types.User, error)
	CountUsers(ctx context.Context) (int64, error)
	UpdateAvatarURL(ctx context.Context, userID, url string) error

	// Stats
	CreateStat(ctx context.Context, userID, name string) (*types.Stat, error)
	SeedDefaultStats(ctx context.Context, userID string) error
	GetStat(ctx context.Context, userID, statID string) (*types.Stat, error)
	ListStats(ctx context.Context, userID string) ([]types.Stat, error)
	UpdateStatProgression(ctx context.Context, userID, statID string, totalXP, level int, levelTitle *string) error
	DeleteStat(ctx context.Context, userID, statID string) error
	Curve() progression.Curve

	// Tasks
	CreateTask(ctx context.Context, userID string, req types.CreateTaskRequest) (*types.Task, error)
	GetTask(ctx context.Context, userID, taskID string) (*types.Task, error)
	ListTasks(ctx context.Context, userID string, status types.TaskStatus) ([]types.Task, error)
	SetTaskStatus(ctx context.Context, userID, taskID string, status types.TaskStatus) (*types.Task, error)
	CreateAdhocTask(ctx context.Context, userID, title, statID string, xp int) (*types.AdhocTask, error)
	GetAdhocTask(ctx context.Context, userID, id string) (*types.AdhocTask, error)
	ListAdhocTasks(ctx context.Context, userID string) ([]types.AdhocTask, error)

	// Focuses
	SetFocus(ctx context.Context, userID string, weekday int, name, statID string) (*types.Focus, error)
	GetFocus(ctx context.Context, userID, id string) (*types.Focus, error)
	GetFocusByWeekday(ctx context.Context, userID string, weekday int) (*types.Focus, error)
	ListFocuses(ctx context.Context, userID string) ([]types.Focus, error)

	// Journals
	CreateJournal(ctx context.Context, userID string, req types.CreateJournalRequest) (*types.Journal, error)
	GetJournal(ctx context.Context, userID, id string) (*types.Journal, error)
	ListJournals(ctx context.Context, userID string, limit int) ([]types.Journal, error)
	FinalizeJournal(ctx context.Context, userID, id, summary string, tags []string) (*types.Journal, error)

	// Quests and experiments
	CreateQuest(ctx context.Context, userID, title, description string, xp int, linkedStatIDs []string) (*types.Quest, error)
	GetQuest(ctx context.Context, userID, id string) (*types.Quest, error)
	ListQuests(ctx context.Context, userID string) ([]types.Quest, error)
	CompleteQuest(ctx context.Context, userID, id string) (*types.Quest, error)
	CreateExperiment(ctx context.Context, userID, title, hypothesis, startDate, endDate string) (*types.Experiment, error)
	ListExperiments(ctx context.Context, userID string) ([]types.Experiment, error)

	// Family
	CreateFamilyMember(ctx context.Context, userID, name, relationship string) (*types.FamilyMember, error)
	GetFamilyMember(ctx context.Context, userID, id string) (*types.FamilyMember, error)
	ListFamilyMembers(ctx context.Context, userID string) ([]types.FamilyMember, error)

	// Ledger
	GrantXP(ctx context.Context, userID string, entityType types.GrantEntityType, entityID string, amount int, sourceType types.GrantSourceType, sourceID string) (*store.GrantResult, error)
	ListXPGrants(ctx context.Context, userID string, limit int) ([]types.XPGrant, error)
}

var _ Store = (*store.SQLiteStore)(nil)

// Handler implements the API handlers
type Handler struct {
	store     Store
	generator genai.Generator
	authn     *auth.Authenticator
	uploader  avatar.Uploader
	version   string
}

// NewHandler creates a new Handler.
func NewHandler(s Store, g genai.Generator, a *auth.Authenticator, u avatar.Uploader, version string) *Handler {
	return &Handler{
		store:     s,
		generator: g,
		authn:     a,
		uploader:  u,
		version:   version,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.CountUsers(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		UserCount: count,
		Model:     h.generator.ModelName(),
	})
}
