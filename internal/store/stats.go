package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/praxisapp/praxis/internal/types"
)

// DefaultStatNames are seeded for every new user at onboarding.
var DefaultStatNames = []string{
	"Physical Fitness",
	"Mental Clarity",
	"Relationships",
	"Craft",
	"Discipline",
}

// CreateStat inserts a stat track for the user at level 1 with 0 XP.
func (s *SQLiteStore) CreateStat(ctx context.Context, userID, name string) (*types.Stat, error) {
	now := time.Now().UTC()
	st := types.Stat{
		ID:           ulid.Make().String(),
		UserID:       userID,
		Name:         name,
		CurrentLevel: 1,
		TotalXP:      0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stats (id, user_id, name, current_level, total_xp, level_title, created_at, updated_at)
		VALUES (?, ?, ?, 1, 0, '', ?, ?)
	`, st.ID, st.UserID, st.Name, now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateStat
		}
		return nil, fmt.Errorf("insert stat: %w", err)
	}

	return &st, nil
}

// SeedDefaultStats creates the default stat set for a new user. Existing
// names are skipped so onboarding is idempotent.
func (s *SQLiteStore) SeedDefaultStats(ctx context.Context, userID string) error {
	for _, name := range DefaultStatNames {
		if _, err := s.CreateStat(ctx, userID, name); err != nil && err != ErrDuplicateStat {
			return fmt.Errorf("seed stat %q: %w", name, err)
		}
	}
	return nil
}

// GetStat retrieves a stat owned by the given user. Rows owned by other
// users are reported as not found, never leaked.
func (s *SQLiteStore) GetStat(ctx context.Context, userID, statID string) (*types.Stat, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, current_level, total_xp, level_title, created_at, updated_at
		FROM stats WHERE id = ? AND user_id = ?
	`, statID, userID)
	return s.scanStat(row)
}

// ListStats returns all stats for the user.
func (s *SQLiteStore) ListStats(ctx context.Context, userID string) ([]types.Stat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, current_level, total_xp, level_title, created_at, updated_at
		FROM stats WHERE user_id = ? ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var stats []types.Stat
	for rows.Next() {
		st, err := s.scanStatRows(rows)
		if err != nil {
			return nil, err
		}
		stats = append(stats, *st)
	}
	return stats, rows.Err()
}

// UpdateStatProgression persists a stat's total XP and level, optionally
// with a new level title. Callers validate consistency first.
func (s *SQLiteStore) UpdateStatProgression(ctx context.Context, userID, statID string, totalXP, level int, levelTitle *string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	var res sql.Result
	var err error
	if levelTitle != nil {
		res, err = s.db.ExecContext(ctx, `
			UPDATE stats SET total_xp = ?, current_level = ?, level_title = ?, updated_at = ?
			WHERE id = ? AND user_id = ?
		`, totalXP, level, *levelTitle, now, statID, userID)
	} else {
		res, err = s.db.ExecContext(ctx, `
			UPDATE stats SET total_xp = ?, current_level = ?, updated_at = ?
			WHERE id = ? AND user_id = ?
		`, totalXP, level, now, statID, userID)
	}
	if err != nil {
		return fmt.Errorf("update stat progression: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteStat removes a stat owned by the user.
func (s *SQLiteStore) DeleteStat(ctx context.Context, userID, statID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM stats WHERE id = ? AND user_id = ?`, statID, userID)
	if err != nil {
		return fmt.Errorf("delete stat: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) scanStat(row *sql.Row) (*types.Stat, error) {
	var st types.Stat
	var createdAt, updatedAt string
	err := row.Scan(&st.ID, &st.UserID, &st.Name, &st.CurrentLevel, &st.TotalXP, &st.LevelTitle, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan stat: %w", err)
	}
	st.CreatedAt = parseTimestamp(createdAt)
	st.UpdatedAt = parseTimestamp(updatedAt)
	st.CurrentXP = s.curve.XPWithinLevel(st.TotalXP, st.CurrentLevel)
	return &st, nil
}

func (s *SQLiteStore) scanStatRows(rows *sql.Rows) (*types.Stat, error) {
	var st types.Stat
	var createdAt, updatedAt string
	err := rows.Scan(&st.ID, &st.UserID, &st.Name, &st.CurrentLevel, &st.TotalXP, &st.LevelTitle, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan stat: %w", err)
	}
	st.CreatedAt = parseTimestamp(createdAt)
	st.UpdatedAt = parseTimestamp(updatedAt)
	st.CurrentXP = s.curve.XPWithinLevel(st.TotalXP, st.CurrentLevel)
	return &st, nil
}
