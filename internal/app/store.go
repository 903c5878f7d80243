package app

import (
	"context"

	"internship_tracker/internal/domain/application"
	"internship_tracker/internal/domain/internship"
	"internship_tracker/internal/domain/interview"
	"internship_tracker/internal/domain/notification"
	"internship_tracker/internal/domain/offer"
	"internship_tracker/internal/domain/tracking"
	"internship_tracker/internal/domain/user"
)

// Store groups the repositories the services work with. Both the in-memory
// and the Postgres backends implement it.
type Store interface {
	Users() user.Repository
	Internships() internship.Repository
	Applications() application.Repository
	Steps() tracking.Repository
	Interviews() interview.Repository
	Offers() offer.Repository
	Notifications() notification.Repository

	// WithinTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Recorder receives workflow counters. A nil Recorder passed to a service
// constructor discards them.
type Recorder interface {
	RecordTransition(from, to string)
	RecordTrackingAction(action, outcome string)
	RecordNotificationFailure(event string)
	RecordReminders(kind string, n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordTransition(string, string)     {}
func (nopRecorder) RecordTrackingAction(string, string) {}
func (nopRecorder) RecordNotificationFailure(string)    {}
func (nopRecorder) RecordReminders(string, int)         {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
