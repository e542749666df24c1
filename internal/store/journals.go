package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/praxisapp/praxis/internal/types"
)

// CreateJournal inserts a draft journal entry. One entry per user per date.
func (s *SQLiteStore) CreateJournal(ctx context.Context, userID string, req types.CreateJournalRequest) (*types.Journal, error) {
	now := time.Now().UTC()
	j := types.Journal{
		ID:        ulid.Make().String(),
		UserID:    userID,
		EntryDate: req.EntryDate,
		Content:   req.Content,
		Mood:      req.Mood,
		Status:    types.JournalDraft,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journals (id, user_id, entry_date, content, mood, status, summary, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 'draft', '', '[]', ?, ?)
	`, j.ID, j.UserID, j.EntryDate, j.Content, j.Mood, now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEntry
		}
		return nil, fmt.Errorf("insert journal: %w", err)
	}

	return &j, nil
}

const journalColumns = `id, user_id, entry_date, content, mood, status, summary, tags, created_at, updated_at`

// GetJournal retrieves a journal entry owned by the user.
func (s *SQLiteStore) GetJournal(ctx context.Context, userID, id string) (*types.Journal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+journalColumns+` FROM journals WHERE id = ? AND user_id = ?`, id, userID)
	j, err := scanJournal(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return j, nil
}

// ListJournals returns the user's entries, newest date first.
func (s *SQLiteStore) ListJournals(ctx context.Context, userID string, limit int) ([]types.Journal, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+journalColumns+` FROM journals WHERE user_id = ? ORDER BY entry_date DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query journals: %w", err)
	}
	defer rows.Close()

	var journals []types.Journal
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		journals = append(journals, *j)
	}
	return journals, rows.Err()
}

// FinalizeJournal transitions a draft entry to final, recording the
// analysis summary and tags. Finalizing twice returns ErrAlreadyFinal so
// journal-driven XP cannot be granted twice.
func (s *SQLiteStore) FinalizeJournal(ctx context.Context, userID, id, summary string, tags []string) (*types.Journal, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	res, err := s.db.ExecContext(ctx, `
		UPDATE journals SET status = 'final', summary = ?, tags = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND status = 'draft'
	`, summary, marshalStringList(tags), now, id, userID)
	if err != nil {
		return nil, fmt.Errorf("finalize journal: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetJournal(ctx, userID, id); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyFinal
	}

	return s.GetJournal(ctx, userID, id)
}

func scanJournal(scanner interface{ Scan(...any) error }) (*types.Journal, error) {
	var j types.Journal
	var status, tagsJSON, createdAt, updatedAt string

	err := scanner.Scan(&j.ID, &j.UserID, &j.EntryDate, &j.Content, &j.Mood, &status,
		&j.Summary, &tagsJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	j.Status = types.JournalStatus(status)
	j.Tags = unmarshalStringList(tagsJSON)
	j.CreatedAt = parseTimestamp(createdAt)
	j.UpdatedAt = parseTimestamp(updatedAt)
	return &j, nil
}
