package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Arctuition/documenso/internal/core/domain"
)

// OutboxRepository reads and settles queued notification events. The
// dispatcher worker is the only consumer.
type OutboxRepository struct {
	db *sql.DB
}

func NewOutboxRepository(db *sql.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) ListPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, event_type, document_id, payload, status, attempts, created_at, dispatched_at
FROM outbox_events
WHERE status = 'PENDING'
ORDER BY created_at, id
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending events: %w", err)
	}
	defer rows.Close()

	out := make([]domain.OutboxEvent, 0)
	for rows.Next() {
		var event domain.OutboxEvent
		var eventType, status string
		var payloadRaw []byte
		var dispatchedAt sql.NullTime

		if err := rows.Scan(
			&event.ID, &eventType, &event.DocumentID, &payloadRaw,
			&status, &event.Attempts, &event.CreatedAt, &dispatchedAt,
		); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		if err := json.Unmarshal(payloadRaw, &event.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal event payload: %w", err)
		}
		event.Type = domain.EventType(eventType)
		event.Status = domain.OutboxStatus(status)
		if dispatchedAt.Valid {
			t := dispatchedAt.Time
			event.DispatchedAt = &t
		}
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox events: %w", err)
	}
	return out, nil
}

func (r *OutboxRepository) MarkDispatched(ctx context.Context, eventID string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE outbox_events
SET status = 'DISPATCHED', dispatched_at = $2
WHERE id = $1
`, eventID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark event dispatched: %w", err)
	}
	return requireRowsAffected(result, "mark event dispatched", domain.ErrNotFound)
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, eventID string, maxAttempts int) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE outbox_events
SET attempts = attempts + 1,
    status = CASE WHEN attempts + 1 >= $2 THEN 'FAILED' ELSE 'PENDING' END
WHERE id = $1
`, eventID, maxAttempts)
	if err != nil {
		return fmt.Errorf("mark event failed: %w", err)
	}
	return requireRowsAffected(result, "mark event failed", domain.ErrNotFound)
}
