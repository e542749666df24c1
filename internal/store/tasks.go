package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/praxisapp/praxis/internal/types"
)

func marshalStringList(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return string(b)
}

func unmarshalStringList(raw string) []string {
	var list []string
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &list)
	}
	if list == nil {
		list = []string{}
	}
	return list
}

// CreateTask inserts a task. Tasks sourced from "todo" are excluded from
// the progression system: their XP and stat references are forced to
// empty here regardless of what the client supplied.
func (s *SQLiteStore) CreateTask(ctx context.Context, userID string, req types.CreateTaskRequest) (*types.Task, error) {
	now := time.Now().UTC()
	t := types.Task{
		ID:            ulid.Make().String(),
		UserID:        userID,
		Title:         req.Title,
		Notes:         req.Notes,
		Source:        req.Source,
		Status:        types.TaskPending,
		EstimatedXP:   req.EstimatedXP,
		LinkedStatIDs: req.LinkedStatIDs,
		StatID:        req.StatID,
		FocusID:       req.FocusID,
		AdhocTaskID:   req.AdhocTaskID,
		QuestID:       req.QuestID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if t.Source == types.SourceTodo {
		t.EstimatedXP = 0
		t.LinkedStatIDs = nil
		t.StatID = ""
		t.FocusID = ""
		t.AdhocTaskID = ""
	}
	if t.LinkedStatIDs == nil {
		t.LinkedStatIDs = []string{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, notes, source, status, estimated_xp,
			linked_stat_ids, stat_id, focus_id, adhoc_task_id, quest_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.UserID, t.Title, t.Notes, string(t.Source), string(t.Status), t.EstimatedXP,
		marshalStringList(t.LinkedStatIDs), t.StatID, t.FocusID, t.AdhocTaskID, t.QuestID,
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	return &t, nil
}

const taskColumns = `id, user_id, title, notes, source, status, estimated_xp,
	linked_stat_ids, stat_id, focus_id, adhoc_task_id, quest_id, completed_at, created_at, updated_at`

// GetTask retrieves a task owned by the user.
func (s *SQLiteStore) GetTask(ctx context.Context, userID, taskID string) (*types.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`, taskID, userID)
	t, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// ListTasks returns the user's tasks, newest first, optionally filtered
// by status.
func (s *SQLiteStore) ListTasks(ctx context.Context, userID string, status types.TaskStatus) ([]types.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []types.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// SetTaskStatus transitions a pending task to completed or skipped. It
// returns ErrNotPending when the task already left the pending state, so
// a double completion cannot award XP twice.
func (s *SQLiteStore) SetTaskStatus(ctx context.Context, userID, taskID string, status types.TaskStatus) (*types.Task, error) {
	now := time.Now().UTC()
	var completedAt any
	if status == types.TaskCompleted {
		completedAt = now.Format(time.RFC3339)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET status = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND status = 'pending'
	`, string(status), completedAt, now.Format(time.RFC3339), taskID, userID)
	if err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		// Distinguish missing from non-pending for the error mapping.
		if _, err := s.GetTask(ctx, userID, taskID); err != nil {
			return nil, err
		}
		return nil, ErrNotPending
	}

	return s.GetTask(ctx, userID, taskID)
}

func scanTask(scanner interface{ Scan(...any) error }) (*types.Task, error) {
	var t types.Task
	var linkedJSON, createdAt, updatedAt string
	var completedAt sql.NullString
	var source, status string

	err := scanner.Scan(&t.ID, &t.UserID, &t.Title, &t.Notes, &source, &status, &t.EstimatedXP,
		&linkedJSON, &t.StatID, &t.FocusID, &t.AdhocTaskID, &t.QuestID, &completedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	t.Source = types.TaskSource(source)
	t.Status = types.TaskStatus(status)
	t.LinkedStatIDs = unmarshalStringList(linkedJSON)
	t.CreatedAt = parseTimestamp(createdAt)
	t.UpdatedAt = parseTimestamp(updatedAt)
	if completedAt.Valid {
		done := parseTimestamp(completedAt.String)
		t.CompletedAt = &done
	}
	return &t, nil
}

// CreateAdhocTask inserts an ad-hoc task definition.
func (s *SQLiteStore) CreateAdhocTask(ctx context.Context, userID, title, statID string, xp int) (*types.AdhocTask, error) {
	now := time.Now().UTC()
	a := types.AdhocTask{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Title:     title,
		StatID:    statID,
		XP:        xp,
		CreatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO adhoc_tasks (id, user_id, title, stat_id, xp, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.ID, a.UserID, a.Title, a.StatID, a.XP, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert adhoc task: %w", err)
	}

	return &a, nil
}

// GetAdhocTask retrieves an ad-hoc definition owned by the user.
func (s *SQLiteStore) GetAdhocTask(ctx context.Context, userID, id string) (*types.AdhocTask, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, stat_id, xp, created_at
		FROM adhoc_tasks WHERE id = ? AND user_id = ?
	`, id, userID)

	var a types.AdhocTask
	var createdAt string
	err := row.Scan(&a.ID, &a.UserID, &a.Title, &a.StatID, &a.XP, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan adhoc task: %w", err)
	}
	a.CreatedAt = parseTimestamp(createdAt)
	return &a, nil
}

// ListAdhocTasks lists a user's ad-hoc definitions, newest first.
func (s *SQLiteStore) ListAdhocTasks(ctx context.Context, userID string) ([]types.AdhocTask, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, stat_id, xp, created_at
		FROM adhoc_tasks WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list adhoc tasks: %w", err)
	}
	defer rows.Close()

	tasks := []types.AdhocTask{}
	for rows.Next() {
		var a types.AdhocTask
		var createdAt string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &a.StatID, &a.XP, &createdAt); err != nil {
			return nil, fmt.Errorf("scan adhoc task: %w", err)
		}
		a.CreatedAt = parseTimestamp(createdAt)
		tasks = append(tasks, a)
	}
	return tasks, rows.Err()
}
