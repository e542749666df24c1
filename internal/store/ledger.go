package store

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/praxisapp/praxis/internal/progression"
	"github.com/praxisapp/praxis/internal/types"
)

// GrantResult is the outcome of one ledger grant. Progression is set only
// for character-stat grants.
type GrantResult struct {
	Grant       types.XPGrant
	Progression *progression.Result
}

// GrantXP is the shared write path for every XP award: task completion,
// journal finalization, quest completion, and manual grants. The ledger
// row is always inserted first; if the subsequent entity-side update
// fails, the error propagates but the ledger row stays. Entity totals are
// therefore reconciled by replaying the ledger, not trusted blindly.
func (s *SQLiteStore) GrantXP(ctx context.Context, userID string, entityType types.GrantEntityType, entityID string, amount int, sourceType types.GrantSourceType, sourceID string) (*GrantResult, error) {
	now := time.Now().UTC()
	grant := types.XPGrant{
		ID:         ulid.Make().String(),
		UserID:     userID,
		EntityType: entityType,
		EntityID:   entityID,
		Amount:     amount,
		SourceType: sourceType,
		SourceID:   sourceID,
		CreatedAt:  now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO xp_grants (id, user_id, entity_type, entity_id, amount, source_type, source_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, grant.ID, grant.UserID, string(grant.EntityType), grant.EntityID, grant.Amount,
		string(grant.SourceType), grant.SourceID, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert xp grant: %w", err)
	}

	res := &GrantResult{Grant: grant}

	switch entityType {
	case types.EntityCharacterStat:
		stat, err := s.GetStat(ctx, userID, entityID)
		if err != nil {
			return res, err
		}
		applied, err := s.curve.ApplyXP(stat.TotalXP, stat.CurrentLevel, amount)
		if err != nil {
			return res, err
		}
		if err := s.UpdateStatProgression(ctx, userID, entityID, applied.NewTotalXP, applied.NewLevel, nil); err != nil {
			return res, err
		}
		res.Progression = &applied

	case types.EntityFamilyMember:
		member, err := s.GetFamilyMember(ctx, userID, entityID)
		if err != nil {
			return res, err
		}
		xp := member.ConnectionXP + amount
		if xp < 0 {
			xp = 0
		}
		level := progression.FamilyLevelForXP(xp)
		if err := s.updateFamilyConnection(ctx, userID, entityID, xp, level); err != nil {
			return res, err
		}

	default:
		// goal, project, adventure: no entity-side numeric field yet; the
		// ledger row is the whole record.
	}

	return res, nil
}

// ListXPGrants returns the user's ledger rows, newest first.
func (s *SQLiteStore) ListXPGrants(ctx context.Context, userID string, limit int) ([]types.XPGrant, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, entity_type, entity_id, amount, source_type, source_id, created_at
		FROM xp_grants WHERE user_id = ? ORDER BY created_at DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query xp grants: %w", err)
	}
	defer rows.Close()

	var grants []types.XPGrant
	for rows.Next() {
		var g types.XPGrant
		var entityType, sourceType, createdAt string
		if err := rows.Scan(&g.ID, &g.UserID, &entityType, &g.EntityID, &g.Amount,
			&sourceType, &g.SourceID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan xp grant: %w", err)
		}
		g.EntityType = types.GrantEntityType(entityType)
		g.SourceType = types.GrantSourceType(sourceType)
		g.CreatedAt = parseTimestamp(createdAt)
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// CountXPGrantsForEntity returns the number of ledger rows for an entity,
// used by tests and reconciliation tooling.
func (s *SQLiteStore) CountXPGrantsForEntity(ctx context.Context, entityType types.GrantEntityType, entityID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM xp_grants WHERE entity_type = ? AND entity_id = ?`,
		string(entityType), entityID).Scan(&count)
	return count, err
}
