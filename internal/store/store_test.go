package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/praxisapp/praxis/internal/progression"
	"github.com/praxisapp/praxis/internal/types"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "praxis_test.db")
	s, err := NewSQLiteStore(dbPath, progression.DefaultCurve())
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestUser(t *testing.T, s *SQLiteStore) *types.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), "test@example.com", "hash", "Tester")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "dup@example.com", "h", "A"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := s.CreateUser(ctx, "dup@example.com", "h", "B")
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("got %v, want ErrDuplicateEmail", err)
	}
}

func TestSeedDefaultStats_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s)

	if err := s.SeedDefaultStats(ctx, u.ID); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := s.SeedDefaultStats(ctx, u.ID); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	stats, err := s.ListStats(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListStats: %v", err)
	}
	if len(stats) != len(DefaultStatNames) {
		t.Errorf("got %d stats, want %d", len(stats), len(DefaultStatNames))
	}
}

func TestGetStat_WrongOwnerIsNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s)

	other, err := s.CreateUser(ctx, "other@example.com", "h", "Other")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	st, err := s.CreateStat(ctx, u.ID, "Craft")
	if err != nil {
		t.Fatalf("CreateStat: %v", err)
	}

	if _, err := s.GetStat(ctx, other.ID, st.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-owner read: got %v, want ErrNotFound", err)
	}
}

func TestGrantXP_StatUpdatesProgression(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s)

	st, err := s.CreateStat(ctx, u.ID, "Discipline")
	if err != nil {
		t.Fatalf("CreateStat: %v", err)
	}

	res, err := s.GrantXP(ctx, u.ID, types.EntityCharacterStat, st.ID, 650, types.GrantSourceTask, "task-1")
	if err != nil {
		t.Fatalf("GrantXP: %v", err)
	}
	if res.Progression == nil {
		t.Fatal("Progression is nil for stat grant")
	}
	if res.Progression.NewLevel != 3 || res.Progression.LevelsGained != 2 {
		t.Errorf("progression = %+v, want level 3 gained 2", res.Progression)
	}

	got, err := s.GetStat(ctx, u.ID, st.ID)
	if err != nil {
		t.Fatalf("GetStat: %v", err)
	}
	if got.TotalXP != 650 || got.CurrentLevel != 3 {
		t.Errorf("persisted total=%d level=%d, want 650/3", got.TotalXP, got.CurrentLevel)
	}
	if got.CurrentXP != 50 {
		t.Errorf("derived CurrentXP = %d, want 50 past the 600 threshold", got.CurrentXP)
	}
}

func TestGrantXP_NegativeAmountFloorsAtZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s)

	st, err := s.CreateStat(ctx, u.ID, "Mood")
	if err != nil {
		t.Fatalf("CreateStat: %v", err)
	}
	if _, err := s.GrantXP(ctx, u.ID, types.EntityCharacterStat, st.ID, 100, types.GrantSourceJournal, "j1"); err != nil {
		t.Fatalf("positive grant: %v", err)
	}
	if _, err := s.GrantXP(ctx, u.ID, types.EntityCharacterStat, st.ID, -250, types.GrantSourceJournal, "j2"); err != nil {
		t.Fatalf("negative grant: %v", err)
	}

	got, err := s.GetStat(ctx, u.ID, st.ID)
	if err != nil {
		t.Fatalf("GetStat: %v", err)
	}
	if got.TotalXP != 0 {
		t.Errorf("TotalXP = %d, want floor at 0", got.TotalXP)
	}
}

func TestGrantXP_LedgerSurvivesEntityFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s)

	// Target stat does not exist: the entity update fails but the ledger
	// row must already be durable.
	_, err := s.GrantXP(ctx, u.ID, types.EntityCharacterStat, "missing-stat", 50, types.GrantSourceManual, "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}

	count, err := s.CountXPGrantsForEntity(ctx, types.EntityCharacterStat, "missing-stat")
	if err != nil {
		t.Fatalf("CountXPGrantsForEntity: %v", err)
	}
	if count != 1 {
		t.Errorf("ledger rows = %d, want 1 despite entity failure", count)
	}
}

func TestGrantXP_FamilyMemberLinearLeveling(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s)

	m, err := s.CreateFamilyMember(ctx, u.ID, "Ada", "sister")
	if err != nil {
		t.Fatalf("CreateFamilyMember: %v", err)
	}

	if _, err := s.GrantXP(ctx, u.ID, types.EntityFamilyMember, m.ID, 250, types.GrantSourceTask, "t1"); err != nil {
		t.Fatalf("GrantXP: %v", err)
	}

	got, err := s.GetFamilyMember(ctx, u.ID, m.ID)
	if err != nil {
		t.Fatalf("GetFamilyMember: %v", err)
	}
	if got.ConnectionXP != 250 || got.ConnectionLevel != 3 {
		t.Errorf("connection xp=%d level=%d, want 250/3", got.ConnectionXP, got.ConnectionLevel)
	}
}

func TestGrantXP_GoalKeepsLedgerOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s)

	res, err := s.GrantXP(ctx, u.ID, types.EntityGoal, "goal-1", 40, types.GrantSourceManual, "")
	if err != nil {
		t.Fatalf("GrantXP: %v", err)
	}
	if res.Progression != nil {
		t.Error("goal grant must not carry progression")
	}

	count, err := s.CountXPGrantsForEntity(ctx, types.EntityGoal, "goal-1")
	if err != nil {
		t.Fatalf("CountXPGrantsForEntity: %v", err)
	}
	if count != 1 {
		t.Errorf("ledger rows = %d, want 1", count)
	}
}

func TestCreateTask_TodoForcedInert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s)

	task, err := s.CreateTask(ctx, u.ID, types.CreateTaskRequest{
		Title:         "buy milk",
		Source:        types.SourceTodo,
		EstimatedXP:   500,
		LinkedStatIDs: []string{"stat-a"},
		StatID:        "stat-b",
		FocusID:       "focus-1",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if task.EstimatedXP != 0 {
		t.Errorf("EstimatedXP = %d, want forced 0", task.EstimatedXP)
	}
	if len(task.LinkedStatIDs) != 0 || task.StatID != "" || task.FocusID != "" {
		t.Errorf("todo task kept stat references: %+v", task)
	}
}

func TestSetTaskStatus_RejectsDoubleCompletion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s)

	task, err := s.CreateTask(ctx, u.ID, types.CreateTaskRequest{Title: "run", Source: types.SourceAI, EstimatedXP: 20})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	done, err := s.SetTaskStatus(ctx, u.ID, task.ID, types.TaskCompleted)
	if err != nil {
		t.Fatalf("first completion: %v", err)
	}
	if done.Status != types.TaskCompleted || done.CompletedAt == nil {
		t.Errorf("task = %+v, want completed with timestamp", done)
	}

	if _, err := s.SetTaskStatus(ctx, u.ID, task.ID, types.TaskCompleted); !errors.Is(err, ErrNotPending) {
		t.Errorf("second completion: got %v, want ErrNotPending", err)
	}
}

func TestFinalizeJournal_Once(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s)

	j, err := s.CreateJournal(ctx, u.ID, types.CreateJournalRequest{EntryDate: "2026-08-30", Content: "a good day"})
	if err != nil {
		t.Fatalf("CreateJournal: %v", err)
	}

	final, err := s.FinalizeJournal(ctx, u.ID, j.ID, "summary", []string{"gratitude"})
	if err != nil {
		t.Fatalf("FinalizeJournal: %v", err)
	}
	if final.Status != types.JournalFinal || final.Summary != "summary" {
		t.Errorf("journal = %+v, want final with summary", final)
	}

	if _, err := s.FinalizeJournal(ctx, u.ID, j.ID, "again", nil); !errors.Is(err, ErrAlreadyFinal) {
		t.Errorf("second finalize: got %v, want ErrAlreadyFinal", err)
	}
}

func TestSetFocus_UpsertPerWeekday(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s)

	st, err := s.CreateStat(ctx, u.ID, "Craft")
	if err != nil {
		t.Fatalf("CreateStat: %v", err)
	}

	if _, err := s.SetFocus(ctx, u.ID, 1, "Maker Monday", st.ID); err != nil {
		t.Fatalf("SetFocus: %v", err)
	}
	f, err := s.SetFocus(ctx, u.ID, 1, "Deep Work Monday", st.ID)
	if err != nil {
		t.Fatalf("SetFocus replace: %v", err)
	}
	if f.Name != "Deep Work Monday" {
		t.Errorf("focus name = %q, want replacement", f.Name)
	}

	focuses, err := s.ListFocuses(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListFocuses: %v", err)
	}
	if len(focuses) != 1 {
		t.Errorf("got %d focuses for weekday 1, want 1", len(focuses))
	}
}
