package interview

import (
	"context"
	"time"
)

type Mode string

const (
	ModeOnline   Mode = "ONLINE"
	ModeInPerson Mode = "IN_PERSON"
	ModePhone    Mode = "PHONE"
)

type Status string

const (
	StatusScheduled   Status = "SCHEDULED"
	StatusRescheduled Status = "RESCHEDULED"
	StatusCompleted   Status = "COMPLETED"
	StatusCancelled   Status = "CANCELLED"
	StatusNoShow      Status = "NO_SHOW"
)

const DefaultDurationMinutes = 30

// Interview is scheduled against an application once the employer shortlists it.
type Interview struct {
	ID              int64      `json:"id"`
	ApplicationID   int64      `json:"application_id"`
	InterviewerID   int64      `json:"interviewer_id"`
	StudentID       int64      `json:"student_id"`
	ScheduledAt     time.Time  `json:"scheduled_datetime"`
	DurationMinutes int        `json:"duration_minutes"`
	Mode            Mode       `json:"mode"`
	Location        string     `json:"location,omitempty"`
	Status          Status     `json:"status"`
	Feedback        string     `json:"feedback,omitempty"`
	Rating          *int       `json:"rating,omitempty"`
	RemindedAt      *time.Time `json:"reminded_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Repository defines operations for interviews.
type Repository interface {
	Create(ctx context.Context, iv *Interview) error
	GetByID(ctx context.Context, id int64) (*Interview, error)
	Update(ctx context.Context, iv *Interview) error
	ListByApplication(ctx context.Context, applicationID int64) ([]*Interview, error)
	// ListDueReminders returns active interviews starting in [from, to) that were not reminded yet.
	ListDueReminders(ctx context.Context, from, to time.Time) ([]*Interview, error)
}
