package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/praxisapp/praxis/internal/types"
)

// SetFocus creates or replaces the focus for a weekday. One focus per
// weekday per user.
func (s *SQLiteStore) SetFocus(ctx context.Context, userID string, weekday int, name, statID string) (*types.Focus, error) {
	now := time.Now().UTC()
	f := types.Focus{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Weekday:   weekday,
		Name:      name,
		StatID:    statID,
		CreatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO focuses (id, user_id, weekday, name, stat_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, weekday) DO UPDATE SET name = excluded.name, stat_id = excluded.stat_id
	`, f.ID, f.UserID, f.Weekday, f.Name, f.StatID, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("upsert focus: %w", err)
	}

	return s.GetFocusByWeekday(ctx, userID, weekday)
}

// GetFocus retrieves a focus by id.
func (s *SQLiteStore) GetFocus(ctx context.Context, userID, id string) (*types.Focus, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, weekday, name, stat_id, created_at
		FROM focuses WHERE id = ? AND user_id = ?
	`, id, userID)
	return scanFocus(row)
}

// GetFocusByWeekday retrieves the focus for a weekday, if any.
func (s *SQLiteStore) GetFocusByWeekday(ctx context.Context, userID string, weekday int) (*types.Focus, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, weekday, name, stat_id, created_at
		FROM focuses WHERE user_id = ? AND weekday = ?
	`, userID, weekday)
	return scanFocus(row)
}

// ListFocuses returns the user's focuses ordered by weekday.
func (s *SQLiteStore) ListFocuses(ctx context.Context, userID string) ([]types.Focus, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, weekday, name, stat_id, created_at
		FROM focuses WHERE user_id = ? ORDER BY weekday ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query focuses: %w", err)
	}
	defer rows.Close()

	var focuses []types.Focus
	for rows.Next() {
		var f types.Focus
		var createdAt string
		if err := rows.Scan(&f.ID, &f.UserID, &f.Weekday, &f.Name, &f.StatID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan focus: %w", err)
		}
		f.CreatedAt = parseTimestamp(createdAt)
		focuses = append(focuses, f)
	}
	return focuses, rows.Err()
}

func scanFocus(row *sql.Row) (*types.Focus, error) {
	var f types.Focus
	var createdAt string
	err := row.Scan(&f.ID, &f.UserID, &f.Weekday, &f.Name, &f.StatID, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan focus: %w", err)
	}
	f.CreatedAt = parseTimestamp(createdAt)
	return &f, nil
}
