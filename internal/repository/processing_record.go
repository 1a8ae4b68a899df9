package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/printloom/printloom-backend/internal/domain"
)

const processingRecordColumns = `event_id, status, external_order_id,
	started_at, finished_at, notified_at`

// Admission is the result of attempting to claim an event ID for processing.
// When Admitted is false, Existing holds the record that won the claim.
type Admission struct {
	Admitted bool
	Existing *domain.ProcessingRecord
}

type ProcessingRecordRepository struct {
	db *sql.DB
}

func NewProcessingRecordRepository(db *sql.DB) *ProcessingRecordRepository {
	return &ProcessingRecordRepository{db: db}
}

// Begin atomically inserts an in_progress record for eventID if none exists.
// ON CONFLICT DO NOTHING makes the check-and-insert a single statement, so
// concurrent deliveries of the same event can never both be admitted; a
// read-then-write here would race.
func (r *ProcessingRecordRepository) Begin(ctx context.Context, eventID string) (*Admission, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO processing_records (event_id, status, started_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id) DO NOTHING`,
		eventID, domain.ProcessingStatusInProgress, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("Begin: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("Begin: rows affected: %w", err)
	}
	if rows == 1 {
		return &Admission{Admitted: true}, nil
	}

	existing, err := r.Get(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("Begin: %w", err)
	}
	return &Admission{Admitted: false, Existing: existing}, nil
}

// Finish transitions the record for eventID from in_progress to a terminal
// status. The status guard in the WHERE clause is what keeps completed and
// failed records from ever regressing.
func (r *ProcessingRecordRepository) Finish(ctx context.Context, eventID string, status domain.ProcessingStatus, externalOrderID *string) error {
	if !status.Terminal() {
		return fmt.Errorf("Finish: non-terminal status %q", status)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE processing_records
		SET status = $2, external_order_id = $3, finished_at = $4
		WHERE event_id = $1 AND status = $5`,
		eventID, status, externalOrderID, time.Now().UTC(), domain.ProcessingStatusInProgress,
	)
	if err != nil {
		return fmt.Errorf("Finish: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Finish: rows affected: %w", err)
	}
	if rows == 0 {
		if _, err := r.Get(ctx, eventID); errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("Finish: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("Finish: %w", domain.ErrRecordTerminal)
	}
	return nil
}

// MarkNotified stamps the one-and-only notification send for eventID.
func (r *ProcessingRecordRepository) MarkNotified(ctx context.Context, eventID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE processing_records SET notified_at = $2
		WHERE event_id = $1 AND notified_at IS NULL`,
		eventID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("MarkNotified: %w", err)
	}
	return nil
}

func (r *ProcessingRecordRepository) Get(ctx context.Context, eventID string) (*domain.ProcessingRecord, error) {
	var rec domain.ProcessingRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT `+processingRecordColumns+` FROM processing_records WHERE event_id = $1`,
		eventID,
	).Scan(
		&rec.EventID, &rec.Status, &rec.ExternalOrderID,
		&rec.StartedAt, &rec.FinishedAt, &rec.NotifiedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("Get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &rec, nil
}
