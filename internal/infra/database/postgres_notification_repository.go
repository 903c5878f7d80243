// internal/infra/database/postgres_notification_repository.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"internship_tracker/internal/domain/notification"
)

type PostgresNotificationRepository struct {
	q querier
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return fmt.Errorf("error encoding notification payload: %w", err)
	}
	query := `INSERT INTO notifications (recipient_id, event_type, payload, created_at)
               VALUES ($1, $2, $3, $4)
               RETURNING id`
	err = r.q.QueryRowContext(ctx, query, n.RecipientID, n.EventType, payload, n.CreatedAt).Scan(&n.ID)
	return mapError(err, "notification", "creating notification")
}

func (r *PostgresNotificationRepository) ListByRecipient(ctx context.Context, recipientID int64, unreadOnly bool) ([]*notification.Notification, error) {
	query := `SELECT id, recipient_id, event_type, payload, read_at, created_at
               FROM notifications
               WHERE recipient_id = $1 AND (NOT $2 OR read_at IS NULL)
               ORDER BY created_at DESC, id DESC`
	rows, err := r.q.QueryContext(ctx, query, recipientID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("error querying notifications: %w", err)
	}
	defer rows.Close()

	out := make([]*notification.Notification, 0)
	for rows.Next() {
		n := &notification.Notification{}
		var payload []byte
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.EventType, &payload, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning notification row: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &n.Payload); err != nil {
				return nil, fmt.Errorf("error decoding payload of notification %d: %w", n.ID, err)
			}
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}
	return out, nil
}

func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, id, recipientID int64, at time.Time) error {
	query := `UPDATE notifications
               SET read_at = COALESCE(read_at, $1)
               WHERE id = $2 AND recipient_id = $3
               RETURNING id`
	var updated int64
	err := r.q.QueryRowContext(ctx, query, at, id, recipientID).Scan(&updated)
	return mapError(err, "notification", "marking notification read")
}
