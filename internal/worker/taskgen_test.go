package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/praxisapp/praxis/internal/genai"
	"github.com/praxisapp/praxis/internal/store"
	"github.com/praxisapp/praxis/internal/types"
)

type mockTaskGenStore struct {
	userIDs    []string
	users      map[string]*types.User
	stats      map[string][]types.Stat
	focuses    map[string]*types.Focus
	created    []types.CreateTaskRequest
	createdFor []string
	listErr    error
	getUserErr map[string]error
	createErr  error
}

func (m *mockTaskGenStore) ListUserIDs(ctx context.Context) ([]string, error) {
	return m.userIDs, m.listErr
}

func (m *mockTaskGenStore) GetUser(ctx context.Context, id string) (*types.User, error) {
	if err := m.getUserErr[id]; err != nil {
		return nil, err
	}
	return m.users[id], nil
}

func (m *mockTaskGenStore) ListStats(ctx context.Context, userID string) ([]types.Stat, error) {
	return m.stats[userID], nil
}

func (m *mockTaskGenStore) GetFocusByWeekday(ctx context.Context, userID string, weekday int) (*types.Focus, error) {
	if f, ok := m.focuses[userID]; ok {
		return f, nil
	}
	return nil, store.ErrNotFound
}

func (m *mockTaskGenStore) CreateTask(ctx context.Context, userID string, req types.CreateTaskRequest) (*types.Task, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, req)
	m.createdFor = append(m.createdFor, userID)
	return &types.Task{ID: "task", UserID: userID, Title: req.Title}, nil
}

type mockGen struct {
	suggestions map[string][]genai.TaskSuggestion
	errFor      map[string]bool
	calls       int
}

func (m *mockGen) SuggestTasks(ctx context.Context, uc genai.UserContext, count int) ([]genai.TaskSuggestion, error) {
	m.calls++
	if m.errFor[uc.DisplayName] {
		return nil, errors.New("model unavailable")
	}
	return m.suggestions[uc.DisplayName], nil
}

func (m *mockGen) AnalyzeJournal(ctx context.Context, content, mood string, stats []genai.StatContext) (*genai.JournalAnalysis, error) {
	return nil, errors.New("not used")
}

func (m *mockGen) LevelTitle(ctx context.Context, statName string, level int) (string, error) {
	return "", errors.New("not used")
}

func (m *mockGen) WeeklySummary(ctx context.Context, wc genai.WeeklyContext) (*genai.WeeklySummary, error) {
	return nil, errors.New("not used")
}

func (m *mockGen) ModelName() string { return "mock" }

func newMockStore() *mockTaskGenStore {
	return &mockTaskGenStore{
		userIDs: []string{"u1", "u2"},
		users: map[string]*types.User{
			"u1": {ID: "u1", DisplayName: "Ada"},
			"u2": {ID: "u2", DisplayName: "Grace"},
		},
		stats: map[string][]types.Stat{
			"u1": {{ID: "s1", Name: "Discipline", CurrentLevel: 2}},
			"u2": {{ID: "s2", Name: "Craft", CurrentLevel: 1}},
		},
		focuses:    map[string]*types.Focus{},
		getUserErr: map[string]error{},
	}
}

func TestRunOnceCreatesTasksForAllUsers(t *testing.T) {
	s := newMockStore()
	g := &mockGen{
		suggestions: map[string][]genai.TaskSuggestion{
			"Ada":   {{Title: "Plan the week", StatName: "Discipline", SuggestedXP: 30}},
			"Grace": {{Title: "Sketch a circuit", StatName: "Craft", SuggestedXP: 40}},
		},
		errFor: map[string]bool{},
	}

	w := NewTaskGenWorker(s, g, time.Hour, 3)
	w.RunOnce(context.Background())

	if len(s.created) != 2 {
		t.Fatalf("expected 2 tasks created, got %d", len(s.created))
	}
	for _, req := range s.created {
		if req.Source != types.SourceAI {
			t.Errorf("worker tasks must have source %q, got %q", types.SourceAI, req.Source)
		}
	}
	if s.created[0].LinkedStatIDs[0] != "s1" {
		t.Errorf("suggestion stat name should resolve to stat id, got %v", s.created[0].LinkedStatIDs)
	}
}

func TestRunOnceSkipsFailingUser(t *testing.T) {
	s := newMockStore()
	g := &mockGen{
		suggestions: map[string][]genai.TaskSuggestion{
			"Grace": {{Title: "Sketch a circuit", SuggestedXP: 40}},
		},
		errFor: map[string]bool{"Ada": true},
	}

	w := NewTaskGenWorker(s, g, time.Hour, 3)
	w.RunOnce(context.Background())

	if len(s.created) != 1 {
		t.Fatalf("expected 1 task despite one user failing, got %d", len(s.created))
	}
	if s.createdFor[0] != "u2" {
		t.Errorf("expected task for u2, got %q", s.createdFor[0])
	}
}

func TestRunOnceFallsBackToFocusStat(t *testing.T) {
	s := newMockStore()
	s.userIDs = []string{"u1"}
	s.focuses["u1"] = &types.Focus{ID: "f1", Name: "Deep Work", StatID: "s1"}
	g := &mockGen{
		suggestions: map[string][]genai.TaskSuggestion{
			"Ada": {{Title: "Ninety minutes of focus", StatName: "Unknown Stat", SuggestedXP: 50}},
		},
		errFor: map[string]bool{},
	}

	w := NewTaskGenWorker(s, g, time.Hour, 3)
	w.RunOnce(context.Background())

	if len(s.created) != 1 {
		t.Fatalf("expected 1 task, got %d", len(s.created))
	}
	if len(s.created[0].LinkedStatIDs) != 1 || s.created[0].LinkedStatIDs[0] != "s1" {
		t.Errorf("unresolvable stat name should fall back to focus stat, got %v", s.created[0].LinkedStatIDs)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	s := newMockStore()
	g := &mockGen{errFor: map[string]bool{}, suggestions: map[string][]genai.TaskSuggestion{}}
	w := NewTaskGenWorker(s, g, 10*time.Millisecond, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
	if g.calls == 0 {
		t.Error("expected at least one generation cycle before cancellation")
	}
}

func TestRunOnceListUsersFailure(t *testing.T) {
	s := newMockStore()
	s.listErr = errors.New("db closed")
	g := &mockGen{errFor: map[string]bool{}}

	w := NewTaskGenWorker(s, g, time.Hour, 3)
	w.RunOnce(context.Background())

	if len(s.created) != 0 {
		t.Errorf("no tasks expected when user listing fails, got %d", len(s.created))
	}
	if g.calls != 0 {
		t.Errorf("generator should not be called when user listing fails, got %d calls", g.calls)
	}
}
