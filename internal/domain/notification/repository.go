// internal/domain/notification/repository.go
package notification

import (
	"context"
	"time"
)

// Repository stores in-app notifications.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByRecipient(ctx context.Context, recipientID int64, unreadOnly bool) ([]*Notification, error) // newest first
	// MarkRead sets read_at on a notification owned by recipientID.
	MarkRead(ctx context.Context, id, recipientID int64, at time.Time) error
}
