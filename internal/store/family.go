package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/praxisapp/praxis/internal/types"
)

// CreateFamilyMember inserts a relationship entity at connection level 1.
func (s *SQLiteStore) CreateFamilyMember(ctx context.Context, userID, name, relationship string) (*types.FamilyMember, error) {
	now := time.Now().UTC()
	m := types.FamilyMember{
		ID:              ulid.Make().String(),
		UserID:          userID,
		Name:            name,
		Relationship:    relationship,
		ConnectionXP:    0,
		ConnectionLevel: 1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO family_members (id, user_id, name, relationship, connection_xp, connection_level, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, 1, ?, ?)
	`, m.ID, m.UserID, m.Name, m.Relationship, now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert family member: %w", err)
	}

	return &m, nil
}

// GetFamilyMember retrieves a family member owned by the user.
func (s *SQLiteStore) GetFamilyMember(ctx context.Context, userID, id string) (*types.FamilyMember, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, relationship, connection_xp, connection_level, created_at, updated_at
		FROM family_members WHERE id = ? AND user_id = ?
	`, id, userID)

	var m types.FamilyMember
	var createdAt, updatedAt string
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Relationship, &m.ConnectionXP, &m.ConnectionLevel, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan family member: %w", err)
	}
	m.CreatedAt = parseTimestamp(createdAt)
	m.UpdatedAt = parseTimestamp(updatedAt)
	return &m, nil
}

// ListFamilyMembers returns the user's family members.
func (s *SQLiteStore) ListFamilyMembers(ctx context.Context, userID string) ([]types.FamilyMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, relationship, connection_xp, connection_level, created_at, updated_at
		FROM family_members WHERE user_id = ? ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query family members: %w", err)
	}
	defer rows.Close()

	var members []types.FamilyMember
	for rows.Next() {
		var m types.FamilyMember
		var createdAt, updatedAt string
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Relationship, &m.ConnectionXP,
			&m.ConnectionLevel, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan family member: %w", err)
		}
		m.CreatedAt = parseTimestamp(createdAt)
		m.UpdatedAt = parseTimestamp(updatedAt)
		members = append(members, m)
	}
	return members, rows.Err()
}

// updateFamilyConnection persists new connection XP and level.
func (s *SQLiteStore) updateFamilyConnection(ctx context.Context, userID, id string, xp, level int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE family_members SET connection_xp = ?, connection_level = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, xp, level, time.Now().UTC().Format(time.RFC3339), id, userID)
	if err != nil {
		return fmt.Errorf("update family connection: %w", err)
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
