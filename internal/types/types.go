package types

import (
	"encoding/json"
	"time"
)

// TaskSource identifies where a task came from.
type TaskSource string

const (
	SourceAI         TaskSource = "ai"
	SourceQuest      TaskSource = "quest"
	SourceExperiment TaskSource = "experiment"
	SourceTodo       TaskSource = "todo"
	SourceAdhoc      TaskSource = "adhoc"
	SourceExternal   TaskSource = "external"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
	TaskSkipped   TaskStatus = "skipped"
)

// GrantEntityType identifies the kind of entity an XP grant targets.
type GrantEntityType string

const (
	EntityCharacterStat GrantEntityType = "character_stat"
	EntityFamilyMember  GrantEntityType = "family_member"
	EntityGoal          GrantEntityType = "goal"
	EntityProject       GrantEntityType = "project"
	EntityAdventure     GrantEntityType = "adventure"
)

// GrantSourceType identifies what produced an XP grant.
type GrantSourceType string

const (
	GrantSourceJournal GrantSourceType = "journal"
	GrantSourceQuest   GrantSourceType = "quest"
	GrantSourceTask    GrantSourceType = "task"
	GrantSourceManual  GrantSourceType = "manual"
)

// User is an account holder. The password hash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Stat is a named progression track owned by a user. CurrentXP is derived
// from TotalXP and the threshold curve on read; TotalXP and CurrentLevel
// are the persisted source of truth.
type Stat struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	CurrentLevel int       `json:"current_level"`
	TotalXP      int       `json:"total_xp"`
	CurrentXP    int       `json:"current_xp"`
	LevelTitle   string    `json:"level_title,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Task is a unit of work. A task may reference stats three ways: the
// modern LinkedStatIDs list, the legacy single StatID, or indirectly via
// its focus of the day.
type Task struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Title         string     `json:"title"`
	Notes         string     `json:"notes,omitempty"`
	Source        TaskSource `json:"source"`
	Status        TaskStatus `json:"status"`
	EstimatedXP   int        `json:"estimated_xp"`
	LinkedStatIDs []string   `json:"linked_stat_ids"`
	StatID        string     `json:"stat_id,omitempty"`
	FocusID       string     `json:"focus_id,omitempty"`
	AdhocTaskID   string     `json:"adhoc_task_id,omitempty"`
	QuestID       string     `json:"quest_id,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// AdhocTask is a user-defined one-off definition carrying its own XP value
// and single target stat. It overrides normal award resolution.
type AdhocTask struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	StatID    string    `json:"stat_id"`
	XP        int       `json:"xp"`
	CreatedAt time.Time `json:"created_at"`
}

// Focus is a day-of-week theme linked to a default stat. Weekday follows
// time.Weekday (0 = Sunday).
type Focus struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Weekday   int       `json:"weekday"`
	Name      string    `json:"name"`
	StatID    string    `json:"stat_id"`
	CreatedAt time.Time `json:"created_at"`
}

// JournalStatus is the lifecycle state of a journal entry.
type JournalStatus string

const (
	JournalDraft JournalStatus = "draft"
	JournalFinal JournalStatus = "final"
)

// Journal is one day's entry. Summary and Tags are filled by the
// content-generation collaborator at finalization.
type Journal struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	EntryDate string        `json:"entry_date"`
	Content   string        `json:"content"`
	Mood      string        `json:"mood,omitempty"`
	Status    JournalStatus `json:"status"`
	Summary   string        `json:"summary,omitempty"`
	Tags      []string      `json:"tags"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Quest groups related tasks under a narrative goal and carries its own
// XP awarded on completion.
type Quest struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Status        TaskStatus `json:"status"`
	XP            int        `json:"xp"`
	LinkedStatIDs []string   `json:"linked_stat_ids"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Experiment is a time-boxed behavioral trial that spawns tasks.
type Experiment struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	Hypothesis string    `json:"hypothesis,omitempty"`
	Status     string    `json:"status"`
	StartDate  string    `json:"start_date,omitempty"`
	EndDate    string    `json:"end_date,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// FamilyMember is a relationship entity leveled on the linear connection
// scale, not the stat threshold curve.
type FamilyMember struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Name            string    `json:"name"`
	Relationship    string    `json:"relationship,omitempty"`
	ConnectionXP    int       `json:"connection_xp"`
	ConnectionLevel int       `json:"connection_level"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// XPGrant is one immutable ledger row recording a single XP award.
// Amount can be negative for struggling journal content.
type XPGrant struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	EntityType GrantEntityType `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Amount     int             `json:"amount"`
	SourceType GrantSourceType `json:"source_type"`
	SourceID   string          `json:"source_id"`
	CreatedAt  time.Time       `json:"created_at"`
}

// --- Request / response payloads ---

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// CreateStatRequest creates a stat track.
type CreateStatRequest struct {
	Name string `json:"name"`
}

// SetProgressionRequest is a direct progression edit. The pair must be
// consistent with the threshold curve or the request is rejected before
// any write.
type SetProgressionRequest struct {
	TotalXP      int `json:"total_xp"`
	CurrentLevel int `json:"current_level"`
}

// CreateTaskRequest creates a task.
type CreateTaskRequest struct {
	Title         string     `json:"title"`
	Notes         string     `json:"notes,omitempty"`
	Source        TaskSource `json:"source"`
	EstimatedXP   int        `json:"estimated_xp"`
	LinkedStatIDs []string   `json:"linked_stat_ids,omitempty"`
	StatID        string     `json:"stat_id,omitempty"`
	FocusID       string     `json:"focus_id,omitempty"`
	AdhocTaskID   string     `json:"adhoc_task_id,omitempty"`
	QuestID       string     `json:"quest_id,omitempty"`
}

// AppliedAward reports one stat award applied during completion.
type AppliedAward struct {
	StatID       string `json:"stat_id"`
	Amount       int    `json:"amount"`
	NewTotalXP   int    `json:"new_total_xp"`
	NewLevel     int    `json:"new_level"`
	LeveledUp    bool   `json:"leveled_up"`
	LevelsGained int    `json:"levels_gained"`
}

// SkippedAward reports one stat award that could not be applied. The
// completion itself still succeeds.
type SkippedAward struct {
	StatID string `json:"stat_id"`
	Reason string `json:"reason"`
}

// CompleteTaskResponse is the outcome of completing a task.
type CompleteTaskResponse struct {
	Task    Task           `json:"task"`
	Awards  []AppliedAward `json:"awards"`
	Skipped []SkippedAward `json:"skipped,omitempty"`
}

// CreateJournalRequest creates a draft journal entry.
type CreateJournalRequest struct {
	EntryDate string `json:"entry_date"`
	Content   string `json:"content"`
	Mood      string `json:"mood,omitempty"`
}

// FinalizeJournalResponse is the outcome of finalizing a journal entry.
// Analysis fields are best-effort; awards reflect what was applied.
type FinalizeJournalResponse struct {
	Journal Journal        `json:"journal"`
	Awards  []AppliedAward `json:"awards"`
	Skipped []SkippedAward `json:"skipped,omitempty"`
}

// ManualGrantRequest awards XP to an arbitrary entity by hand.
type ManualGrantRequest struct {
	EntityType GrantEntityType `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Amount     int             `json:"amount"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	UserCount int64  `json:"user_count"`
	Model     string `json:"model"`
}

// MarshalJSON ensures nil slices in Task marshal as [] not null.
func (t Task) MarshalJSON() ([]byte, error) {
	if t.LinkedStatIDs == nil {
		t.LinkedStatIDs = []string{}
	}
	type Alias Task
	return json.Marshal(Alias(t))
}

// MarshalJSON ensures nil slices in Journal marshal as [] not null.
func (j Journal) MarshalJSON() ([]byte, error) {
	if j.Tags == nil {
		j.Tags = []string{}
	}
	type Alias Journal
	return json.Marshal(Alias(j))
}

// MarshalJSON ensures nil slices in Quest marshal as [] not null.
func (q Quest) MarshalJSON() ([]byte, error) {
	if q.LinkedStatIDs == nil {
		q.LinkedStatIDs = []string{}
	}
	type Alias Quest
	return json.Marshal(Alias(q))
}

// MarshalJSON ensures nil slices in CompleteTaskResponse marshal as [] not null.
func (r CompleteTaskResponse) MarshalJSON() ([]byte, error) {
	if r.Awards == nil {
		r.Awards = []AppliedAward{}
	}
	type Alias CompleteTaskResponse
	return json.Marshal(Alias(r))
}

// MarshalJSON ensures nil slices in FinalizeJournalResponse marshal as [] not null.
func (r FinalizeJournalResponse) MarshalJSON() ([]byte, error) {
	if r.Awards == nil {
		r.Awards = []AppliedAward{}
	}
	type Alias FinalizeJournalResponse
	return json.Marshal(Alias(r))
}
