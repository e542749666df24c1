// Package genai is the content-generation collaborator: AI task
// suggestions, journal analysis, level titles, and weekly summaries.
// Every call is best-effort; callers treat failures as missing
// enrichment, never as a failed operation.
package genai

import "context"

// StatContext is the slice of a stat the prompts need.
type StatContext struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// UserContext is the structured prompt context for task suggestions.
type UserContext struct {
	DisplayName string        `json:"display_name"`
	Stats       []StatContext `json:"stats"`
	FocusName   string        `json:"focus_name,omitempty"`
	Goals       []string      `json:"goals,omitempty"`
}

// TaskSuggestion is one AI-proposed task.
type TaskSuggestion struct {
	Title       string   `json:"title"`
	Notes       string   `json:"notes,omitempty"`
	StatName    string   `json:"stat_name,omitempty"`
	SuggestedXP int      `json:"suggested_xp"`
	Tags        []string `json:"tags,omitempty"`
}

// JournalAward is one stat award proposed by journal analysis. XP can be
// negative for struggling content.
type JournalAward struct {
	StatName string `json:"stat_name"`
	XP       int    `json:"xp"`
}

// JournalAnalysis is the structured result of analyzing a journal entry.
type JournalAnalysis struct {
	Summary string         `json:"summary"`
	Tags    []string       `json:"tags"`
	Awards  []JournalAward `json:"awards"`
}

// WeeklyContext is the structured prompt context for a weekly summary.
type WeeklyContext struct {
	DisplayName    string        `json:"display_name"`
	Stats          []StatContext `json:"stats"`
	CompletedTasks []string      `json:"completed_tasks"`
	JournalTags    []string      `json:"journal_tags"`
}

// WeeklySummary is the structured weekly recap.
type WeeklySummary struct {
	Summary       string         `json:"summary"`
	Highlights    []string       `json:"highlights"`
	GoalAlignment map[string]int `json:"goal_alignment"`
}

// Generator defines the content-generation operations.
type Generator interface {
	SuggestTasks(ctx context.Context, uc UserContext, count int) ([]TaskSuggestion, error)
	AnalyzeJournal(ctx context.Context, content, mood string, stats []StatContext) (*JournalAnalysis, error)
	LevelTitle(ctx context.Context, statName string, level int) (string, error)
	WeeklySummary(ctx context.Context, wc WeeklyContext) (*WeeklySummary, error)
	ModelName() string
}
