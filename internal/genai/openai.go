package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sethvargo/go-retry"
)

// Compile-time interface check
var _ Generator = (*OpenAI)(nil)

// ChatService defines the interface for making chat completion API calls.
// This abstraction enables testing without calling the real OpenAI API.
type ChatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAI implements the content generator using OpenAI's chat API.
type OpenAI struct {
	chat       ChatService
	model      openai.ChatModel
	maxRetries uint64
}

// NewOpenAI creates a new OpenAI-backed generator.
func NewOpenAI(apiKey, model string) *OpenAI {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAI{
		chat:       client.Chat.Completions,
		model:      openai.ChatModel(model),
		maxRetries: 2,
	}
}

// complete runs one chat completion and returns the raw assistant text.
// Transient failures are retried with exponential backoff.
func (o *OpenAI) complete(ctx context.Context, system, user string) (string, error) {
	var content string

	backoff := retry.WithMaxRetries(o.maxRetries, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := o.chat.New(ctx, openai.ChatCompletionNewParams{
			Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(system),
				openai.UserMessage(user),
			}),
			Model: openai.F(o.model),
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		if len(resp.Choices) == 0 {
			return retry.RetryableError(fmt.Errorf("no choices returned"))
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	return content, nil
}

// stripFences removes a Markdown code fence wrapper, which some models
// emit around JSON output despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

const suggestSystem = `You are a personal development coach for a gamified habit tracker.
Respond with JSON only: {"suggestions": [{"title", "notes", "stat_name", "suggested_xp", "tags"}]}.
Suggested XP must be between 10 and 100. Stat names must come from the user's stat list.`

// SuggestTasks asks the model for daily task suggestions.
func (o *OpenAI) SuggestTasks(ctx context.Context, uc UserContext, count int) ([]TaskSuggestion, error) {
	if count <= 0 {
		count = 3
	}
	ucJSON, err := json.Marshal(uc)
	if err != nil {
		return nil, fmt.Errorf("marshal user context: %w", err)
	}

	prompt := fmt.Sprintf("Suggest %d tasks for today for this user:\n%s", count, ucJSON)
	raw, err := o.complete(ctx, suggestSystem, prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Suggestions []TaskSuggestion `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("parse suggestions: %w", err)
	}
	return parsed.Suggestions, nil
}

const analyzeSystem = `You analyze one journal entry for a gamified habit tracker.
Respond with JSON only: {"summary", "tags": [..], "awards": [{"stat_name", "xp"}]}.
Award between -30 and 50 XP per stat: positive for progress, negative for struggling.
Stat names must come from the user's stat list.`

// AnalyzeJournal asks the model to summarize, tag, and score one entry.
func (o *OpenAI) AnalyzeJournal(ctx context.Context, content, mood string, stats []StatContext) (*JournalAnalysis, error) {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("marshal stats: %w", err)
	}

	prompt := fmt.Sprintf("Stats: %s\nMood: %s\nEntry:\n%s", statsJSON, mood, content)
	raw, err := o.complete(ctx, analyzeSystem, prompt)
	if err != nil {
		return nil, err
	}

	var analysis JournalAnalysis
	if err := json.Unmarshal([]byte(stripFences(raw)), &analysis); err != nil {
		return nil, fmt.Errorf("parse analysis: %w", err)
	}
	return &analysis, nil
}

const titleSystem = `You name levels in a gamified habit tracker.
Respond with JSON only: {"title": "..."}. Titles are at most four words, evocative, no numbers.`

// LevelTitle asks the model for a human-readable title for a level.
func (o *OpenAI) LevelTitle(ctx context.Context, statName string, level int) (string, error) {
	prompt := fmt.Sprintf("Stat: %s, level reached: %d", statName, level)
	raw, err := o.complete(ctx, titleSystem, prompt)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		return "", fmt.Errorf("parse title: %w", err)
	}
	return parsed.Title, nil
}

const weeklySystem = `You write a weekly recap for a gamified habit tracker.
Respond with JSON only: {"summary", "highlights": [..], "goal_alignment": {"tag": score 0-100}}.`

// WeeklySummary asks the model for a recap of the past week.
func (o *OpenAI) WeeklySummary(ctx context.Context, wc WeeklyContext) (*WeeklySummary, error) {
	wcJSON, err := json.Marshal(wc)
	if err != nil {
		return nil, fmt.Errorf("marshal weekly context: %w", err)
	}

	raw, err := o.complete(ctx, weeklySystem, string(wcJSON))
	if err != nil {
		return nil, err
	}

	var summary WeeklySummary
	if err := json.Unmarshal([]byte(stripFences(raw)), &summary); err != nil {
		return nil, fmt.Errorf("parse weekly summary: %w", err)
	}
	return &summary, nil
}

// ModelName returns the chat model name.
func (o *OpenAI) ModelName() string {
	return string(o.model)
}
