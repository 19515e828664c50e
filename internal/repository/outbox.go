package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OutboxEvent is a persisted domain event awaiting relay to the event sink.
type OutboxEvent struct {
	ID          uuid.UUID
	TransferID  uuid.UUID
	Kind        string
	Payload     []byte
	Attempts    int32
	LastError   *string
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// OutboxStore is the contract the relay worker drains events through.
type OutboxStore interface {
	PendingEvents(ctx context.Context, limit int32) ([]OutboxEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// PendingEvents returns unpublished events, oldest first. SKIP LOCKED keeps
// concurrent relay instances from double-delivering the same batch.
func (r *PostgresRepository) PendingEvents(ctx context.Context, limit int32) ([]OutboxEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, transfer_id, kind, payload, attempts, last_error, created_at, published_at
		FROM transfer_events
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED`, limit)
	if err != nil {
		return nil, fmt.Errorf("select pending events: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		var ev OutboxEvent
		if err := rows.Scan(&ev.ID, &ev.TransferID, &ev.Kind, &ev.Payload,
			&ev.Attempts, &ev.LastError, &ev.CreatedAt, &ev.PublishedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *PostgresRepository) MarkPublished(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE transfer_events SET published_at = NOW(), last_error = NULL WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark event published: %w", err)
	}
	return nil
}

func (r *PostgresRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE transfer_events SET attempts = attempts + 1, last_error = $2 WHERE id = $1`, id, reason)
	if err != nil {
		return fmt.Errorf("mark event failed: %w", err)
	}
	return nil
}
