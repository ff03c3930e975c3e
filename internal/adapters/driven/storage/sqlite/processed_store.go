package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/domain"
	"github.com/nguyencaobach123/automated-email-esi/internal/core/ports/driven"
)

// ==================== Processed-message ledger ====================

// processedStore implements driven.ProcessedStore.
type processedStore struct {
	store *Store
}

var _ driven.ProcessedStore = (*processedStore)(nil)

// Get returns the ledger entry for a Gmail message ID, or nil when the
// message was never recorded.
func (s *processedStore) Get(ctx context.Context, messageID string) (*domain.ProcessedMessage, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, message_id, thread_id, sender, subject, outcome, error, processed_at
		FROM processed_messages
		WHERE message_id = ?
	`, messageID)

	rec, err := scanProcessed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting ledger entry: %w", err)
	}
	return rec, nil
}

// Record inserts or replaces the entry for the message ID. A retry
// after a failed attempt overwrites the failed entry with the new
// disposition.
func (s *processedStore) Record(ctx context.Context, rec *domain.ProcessedMessage) error {
	if rec.MessageID == "" {
		return fmt.Errorf("record ledger entry: %w: message ID required", domain.ErrInvalidInput)
	}

	processedAt := rec.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO processed_messages (id, message_id, thread_id, sender, subject, outcome, error, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO UPDATE SET
			outcome = excluded.outcome,
			error = excluded.error,
			processed_at = excluded.processed_at
	`, rec.ID, rec.MessageID, rec.ThreadID, rec.Sender, rec.Subject,
		string(rec.Outcome), rec.Error, processedAt.UTC())
	if err != nil {
		return fmt.Errorf("recording ledger entry: %w", err)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (s *processedStore) Recent(ctx context.Context, limit int) ([]domain.ProcessedMessage, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, message_id, thread_id, sender, subject, outcome, error, processed_at
		FROM processed_messages
		ORDER BY processed_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing ledger entries: %w", err)
	}
	defer rows.Close()

	var records []domain.ProcessedMessage
	for rows.Next() {
		rec, err := scanProcessed(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProcessed(row scanner) (*domain.ProcessedMessage, error) {
	var rec domain.ProcessedMessage
	var outcome string
	if err := row.Scan(&rec.ID, &rec.MessageID, &rec.ThreadID, &rec.Sender,
		&rec.Subject, &outcome, &rec.Error, &rec.ProcessedAt); err != nil {
		return nil, err
	}
	rec.Outcome = domain.Outcome(outcome)
	return &rec, nil
}

// ==================== Watch state ====================

// watchStateStore implements driven.WatchStateStore.
type watchStateStore struct {
	store *Store
}

var _ driven.WatchStateStore = (*watchStateStore)(nil)

// GetWatchState returns the persisted watch state, or nil when no
// watch was ever registered.
func (s *watchStateStore) GetWatchState(ctx context.Context) (*domain.WatchState, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT history_id, expiration, renewed_at FROM watch_state WHERE id = 1
	`)

	var historyID int64
	var state domain.WatchState
	err := row.Scan(&historyID, &state.Expiration, &state.RenewedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting watch state: %w", err)
	}
	state.HistoryID = uint64(historyID)
	return &state, nil
}

// SaveWatchState persists the watch state, replacing any previous one.
func (s *watchStateStore) SaveWatchState(ctx context.Context, state *domain.WatchState) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO watch_state (id, history_id, expiration, renewed_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			history_id = excluded.history_id,
			expiration = excluded.expiration,
			renewed_at = excluded.renewed_at
	`, int64(state.HistoryID), state.Expiration.UTC(), state.RenewedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving watch state: %w", err)
	}
	return nil
}
