package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/praxisapp/praxis/internal/types"
)

// CreateQuest inserts a quest.
func (s *SQLiteStore) CreateQuest(ctx context.Context, userID, title, description string, xp int, linkedStatIDs []string) (*types.Quest, error) {
	now := time.Now().UTC()
	q := types.Quest{
		ID:            ulid.Make().String(),
		UserID:        userID,
		Title:         title,
		Description:   description,
		Status:        types.TaskPending,
		XP:            xp,
		LinkedStatIDs: linkedStatIDs,
		CreatedAt:     now,
	}
	if q.LinkedStatIDs == nil {
		q.LinkedStatIDs = []string{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quests (id, user_id, title, description, status, xp, linked_stat_ids, created_at)
		VALUES (?, ?, ?, ?, 'pending', ?, ?, ?)
	`, q.ID, q.UserID, q.Title, q.Description, q.XP, marshalStringList(q.LinkedStatIDs), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert quest: %w", err)
	}

	return &q, nil
}

// GetQuest retrieves a quest owned by the user.
func (s *SQLiteStore) GetQuest(ctx context.Context, userID, id string) (*types.Quest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, description, status, xp, linked_stat_ids, completed_at, created_at
		FROM quests WHERE id = ? AND user_id = ?
	`, id, userID)
	q, err := scanQuest(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return q, nil
}

// ListQuests returns the user's quests, newest first.
func (s *SQLiteStore) ListQuests(ctx context.Context, userID string) ([]types.Quest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, description, status, xp, linked_stat_ids, completed_at, created_at
		FROM quests WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query quests: %w", err)
	}
	defer rows.Close()

	var quests []types.Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, err
		}
		quests = append(quests, *q)
	}
	return quests, rows.Err()
}

// CompleteQuest transitions a pending quest to completed.
func (s *SQLiteStore) CompleteQuest(ctx context.Context, userID, id string) (*types.Quest, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	res, err := s.db.ExecContext(ctx, `
		UPDATE quests SET status = 'completed', completed_at = ?
		WHERE id = ? AND user_id = ? AND status = 'pending'
	`, now, id, userID)
	if err != nil {
		return nil, fmt.Errorf("complete quest: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetQuest(ctx, userID, id); err != nil {
			return nil, err
		}
		return nil, ErrNotPending
	}

	return s.GetQuest(ctx, userID, id)
}

func scanQuest(scanner interface{ Scan(...any) error }) (*types.Quest, error) {
	var q types.Quest
	var status, linkedJSON, createdAt string
	var completedAt sql.NullString

	err := scanner.Scan(&q.ID, &q.UserID, &q.Title, &q.Description, &status, &q.XP,
		&linkedJSON, &completedAt, &createdAt)
	if err != nil {
		return nil, err
	}

	q.Status = types.TaskStatus(status)
	q.LinkedStatIDs = unmarshalStringList(linkedJSON)
	q.CreatedAt = parseTimestamp(createdAt)
	if completedAt.Valid {
		done := parseTimestamp(completedAt.String)
		q.CompletedAt = &done
	}
	return &q, nil
}

// CreateExperiment inserts an experiment.
func (s *SQLiteStore) CreateExperiment(ctx context.Context, userID, title, hypothesis, startDate, endDate string) (*types.Experiment, error) {
	now := time.Now().UTC()
	e := types.Experiment{
		ID:         ulid.Make().String(),
		UserID:     userID,
		Title:      title,
		Hypothesis: hypothesis,
		Status:     "active",
		StartDate:  startDate,
		EndDate:    endDate,
		CreatedAt:  now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO experiments (id, user_id, title, hypothesis, status, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, 'active', ?, ?, ?)
	`, e.ID, e.UserID, e.Title, e.Hypothesis, e.StartDate, e.EndDate, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert experiment: %w", err)
	}

	return &e, nil
}

// ListExperiments returns the user's experiments, newest first.
func (s *SQLiteStore) ListExperiments(ctx context.Context, userID string) ([]types.Experiment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, hypothesis, status, start_date, end_date, created_at
		FROM experiments WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query experiments: %w", err)
	}
	defer rows.Close()

	var experiments []types.Experiment
	for rows.Next() {
		var e types.Experiment
		var createdAt string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Hypothesis, &e.Status,
			&e.StartDate, &e.EndDate, &createdAt); err != nil {
			return nil, fmt.Errorf("scan experiment: %w", err)
		}
		e.CreatedAt = parseTimestamp(createdAt)
		experiments = append(experiments, e)
	}
	return experiments, rows.Err()
}
