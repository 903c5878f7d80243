// internal/app/notification_service.go
package app

import (
	"context"
	"errors"

	"internship_tracker/internal/domain/notification"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// NotificationService serves the in-app notification inbox.
type NotificationService struct {
	store Store
	clock clockwork.Clock
}

func NewNotificationService(store Store, clock clockwork.Clock) *NotificationService {
	return &NotificationService{store: store, clock: clock}
}

func (s *NotificationService) List(ctx context.Context, actor Actor, unreadOnly bool) ([]*notification.Notification, error) {
	return s.store.Notifications().ListByRecipient(ctx, actor.ID, unreadOnly)
}

func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, id int64) error {
	return s.store.Notifications().MarkRead(ctx, id, actor.ID, s.clock.Now().UTC())
}

// StoreNotifier persists every event as an in-app notification.
type StoreNotifier struct {
	repo  notification.Repository
	clock clockwork.Clock
}

func NewStoreNotifier(repo notification.Repository, clock clockwork.Clock) *StoreNotifier {
	return &StoreNotifier{repo: repo, clock: clock}
}

func (n *StoreNotifier) Notify(ctx context.Context, recipientID int64, event notification.EventType, payload notification.Payload) error {
	return n.repo.Create(ctx, &notification.Notification{
		RecipientID: recipientID,
		EventType:   event,
		Payload:     payload,
		CreatedAt:   n.clock.Now().UTC(),
	})
}

// MultiNotifier delivers to every notifier, even when one of them fails.
type MultiNotifier []notification.Notifier

func (m MultiNotifier) Notify(ctx context.Context, recipientID int64, event notification.EventType, payload notification.Payload) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, recipientID, event, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// eventSink wraps a Notifier with the fire-and-forget policy used by the
// services: delivery errors are logged and counted, never returned.
type eventSink struct {
	notifier notification.Notifier
	rec      Recorder
	log      *logrus.Entry
}

func newEventSink(notifier notification.Notifier, rec Recorder, log *logrus.Entry) eventSink {
	return eventSink{notifier: notifier, rec: recorderOrNop(rec), log: log}
}

func (e eventSink) emit(ctx context.Context, recipientID int64, event notification.EventType, payload notification.Payload) {
	if e.notifier == nil || recipientID == 0 {
		return
	}
	if err := e.notifier.Notify(ctx, recipientID, event, payload); err != nil {
		e.rec.RecordNotificationFailure(string(event))
		e.log.WithError(err).WithFields(logrus.Fields{
			"recipient_id": recipientID,
			"event":        event,
		}).Warn("Failed to deliver notification")
	}
}
