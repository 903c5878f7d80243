package app

import (
	"context"
	"time"

	"internship_tracker/internal/domain/notification"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// ReminderService sends one-time reminders about upcoming interviews and
// offers whose response deadline is near.
type ReminderService struct {
	store         Store
	events        eventSink
	rec           Recorder
	clock         clockwork.Clock
	interviewLead time.Duration
	offerLead     time.Duration
	log           *logrus.Entry
}

func NewReminderService(store Store, notifier notification.Notifier, rec Recorder, clock clockwork.Clock, interviewLead, offerLead time.Duration, log *logrus.Entry) *ReminderService {
	return &ReminderService{
		store:         store,
		events:        newEventSink(notifier, rec, log),
		rec:           recorderOrNop(rec),
		clock:         clock,
		interviewLead: interviewLead,
		offerLead:     offerLead,
		log:           log,
	}
}

// SendInterviewReminders notifies the student and the interviewer of every
// active interview starting within the lead time. Each interview is reminded once.
func (s *ReminderService) SendInterviewReminders(ctx context.Context) (int, error) {
	now := s.clock.Now().UTC()
	due, err := s.store.Interviews().ListDueReminders(ctx, now, now.Add(s.interviewLead))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, iv := range due {
		payload := interviewPayload(iv)
		if iv.Location != "" {
			payload["location"] = iv.Location
		}
		s.events.emit(ctx, iv.StudentID, notification.EventInterviewReminder, payload)
		s.events.emit(ctx, iv.InterviewerID, notification.EventInterviewReminder, payload)

		remindedAt := now
		iv.RemindedAt = &remindedAt
		iv.UpdatedAt = now
		if err := s.store.Interviews().Update(ctx, iv); err != nil {
			s.log.WithError(err).WithField("interview_id", iv.ID).Error("Failed to mark interview as reminded")
			continue
		}
		sent++
	}

	s.rec.RecordReminders("interview", sent)
	s.log.WithFields(logrus.Fields{"due": len(due), "sent": sent}).Debug("Interview reminders processed")
	return sent, nil
}

// SendOfferDeadlineReminders notifies students whose extended offer expires
// within the lead time. Each offer is reminded once.
func (s *ReminderService) SendOfferDeadlineReminders(ctx context.Context) (int, error) {
	now := s.clock.Now().UTC()
	due, err := s.store.Offers().ListDueReminders(ctx, now, now.Add(s.offerLead))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, o := range due {
		s.events.emit(ctx, o.StudentID, notification.EventOfferDeadlineReminder, offerPayload(o))

		remindedAt := now
		o.RemindedAt = &remindedAt
		o.UpdatedAt = now
		if err := s.store.Offers().Update(ctx, o); err != nil {
			s.log.WithError(err).WithField("offer_id", o.ID).Error("Failed to mark offer as reminded")
			continue
		}
		sent++
	}

	s.rec.RecordReminders("offer_deadline", sent)
	s.log.WithFields(logrus.Fields{"due": len(due), "sent": sent}).Debug("Offer deadline reminders processed")
	return sent, nil
}
