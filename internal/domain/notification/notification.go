// internal/domain/notification/notification.go
package notification

import (
	"context"
	"time"
)

// EventType names what happened to an application or one of its sub-records.
type EventType string

const (
	EventApplicationCreated    EventType = "application.created"
	EventStatusChanged         EventType = "application.status_changed"
	EventStepCompleted         EventType = "tracking.step_completed"
	EventInterviewScheduled    EventType = "interview.scheduled"
	EventInterviewStatus       EventType = "interview.status_changed"
	EventFeedbackRecorded      EventType = "interview.feedback_recorded"
	EventOfferCreated          EventType = "offer.created"
	EventOfferStatus           EventType = "offer.status_changed"
	EventResumeViewed          EventType = "resume.viewed"
	EventInterviewReminder     EventType = "interview.reminder"
	EventOfferDeadlineReminder EventType = "offer.deadline_reminder"
)

// Payload is the event body. It is stored as a JSON object.
type Payload map[string]any

// Notification is an in-app notification addressed to one user.
type Notification struct {
	ID          int64      `json:"id"`
	RecipientID int64      `json:"recipient_id"`
	EventType   EventType  `json:"event_type"`
	Payload     Payload    `json:"payload"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Notifier delivers an event to a recipient. Callers treat delivery as best
// effort: a failed notification never undoes the state change that caused it.
type Notifier interface {
	Notify(ctx context.Context, recipientID int64, event EventType, payload Payload) error
}
