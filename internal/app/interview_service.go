package app

import (
	"context"
	"fmt"
	"time"

	"internship_tracker/internal/common"
	"internship_tracker/internal/domain/interview"
	"internship_tracker/internal/domain/notification"
	"internship_tracker/internal/domain/tracking"

	"github.com/sirupsen/logrus"
)

// ScheduleInterview creates an interview and completes the "Interview
// Scheduling" step. Nothing is written when the input is incomplete.
func (s *TrackingService) ScheduleInterview(ctx context.Context, actor Actor, in ScheduleInterviewInput) (*interview.Interview, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}

	var created *interview.Interview
	err := s.store.WithinTx(ctx, func(tx Store) error {
		ac, err := loadApplicationContext(ctx, tx, in.ApplicationID)
		if err != nil {
			return err
		}
		if err := actor.authorize(employerOrStaff, ac); err != nil {
			return err
		}
		if _, err := tx.Users().GetByID(ctx, in.InterviewerID); err != nil {
			if common.Is(err, common.CodeNotFound) {
				return common.NewValidationError("interviewer does not exist", map[string]string{"interviewer_id": "exists"})
			}
			return err
		}

		now := s.clock.Now().UTC()
		iv := &interview.Interview{
			ApplicationID:   in.ApplicationID,
			InterviewerID:   in.InterviewerID,
			StudentID:       ac.app.StudentID,
			ScheduledAt:     in.ScheduledAt.UTC(),
			DurationMinutes: in.DurationMinutes,
			Mode:            in.Mode,
			Location:        in.Location,
			Status:          interview.StatusScheduled,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if iv.DurationMinutes == 0 {
			iv.DurationMinutes = interview.DefaultDurationMinutes
		}
		if iv.Mode == "" {
			iv.Mode = interview.ModeOnline
		}
		if err := tx.Interviews().Create(ctx, iv); err != nil {
			return err
		}
		note := "Interview scheduled for " + iv.ScheduledAt.Format(time.RFC3339)
		if _, err := completeNamedStep(ctx, tx, iv.ApplicationID, tracking.StepInterviewScheduling, note, actor.ID, now); err != nil {
			return err
		}
		created = iv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"application_id": created.ApplicationID,
		"interview_id":   created.ID,
		"scheduled_at":   created.ScheduledAt,
	}).Info("Interview scheduled")
	payload := interviewPayload(created)
	s.events.emit(ctx, created.StudentID, notification.EventInterviewScheduled, payload)
	if created.InterviewerID != actor.ID {
		s.events.emit(ctx, created.InterviewerID, notification.EventInterviewScheduled, payload)
	}
	return created, nil
}

// UpdateInterviewStatus changes an interview's status. Any status may follow
// any other; the interview only has to exist.
func (s *TrackingService) UpdateInterviewStatus(ctx context.Context, actor Actor, in UpdateInterviewStatusInput) (*interview.Interview, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	iv, err := s.authorizedInterview(ctx, actor, in.InterviewID)
	if err != nil {
		return nil, err
	}

	iv.Status = in.Status
	if in.ScheduledAt != nil {
		iv.ScheduledAt = in.ScheduledAt.UTC()
		iv.RemindedAt = nil
	}
	if in.Feedback != nil {
		iv.Feedback = *in.Feedback
	}
	if in.Rating != nil {
		rating := *in.Rating
		iv.Rating = &rating
	}
	iv.UpdatedAt = s.clock.Now().UTC()
	if err := s.store.Interviews().Update(ctx, iv); err != nil {
		return nil, err
	}

	s.events.emit(ctx, iv.StudentID, notification.EventInterviewStatus, interviewPayload(iv))
	return iv, nil
}

// RecordFeedback stores interviewer feedback and completes the "Feedback
// Collection" step.
func (s *TrackingService) RecordFeedback(ctx context.Context, actor Actor, in RecordFeedbackInput) (*interview.Interview, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}

	var updated *interview.Interview
	err := s.store.WithinTx(ctx, func(tx Store) error {
		iv, err := tx.Interviews().GetByID(ctx, in.InterviewID)
		if err != nil {
			return err
		}
		ac, err := loadApplicationContext(ctx, tx, iv.ApplicationID)
		if err != nil {
			return err
		}
		if err := actor.authorize(employerOrStaff, ac); err != nil {
			return err
		}

		now := s.clock.Now().UTC()
		iv.Feedback = in.Feedback
		if in.Rating != nil {
			rating := *in.Rating
			iv.Rating = &rating
		}
		iv.UpdatedAt = now
		if err := tx.Interviews().Update(ctx, iv); err != nil {
			return err
		}
		if _, err := completeNamedStep(ctx, tx, iv.ApplicationID, tracking.StepFeedbackCollection, "", actor.ID, now); err != nil {
			return err
		}
		updated = iv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.emit(ctx, updated.StudentID, notification.EventFeedbackRecorded, interviewPayload(updated))
	return updated, nil
}

func (s *TrackingService) authorizedInterview(ctx context.Context, actor Actor, id int64) (*interview.Interview, error) {
	iv, err := s.store.Interviews().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ac, err := loadApplicationContext(ctx, s.store, iv.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("interview %d: %w", id, err)
	}
	if err := actor.authorize(employerOrStaff, ac); err != nil {
		return nil, err
	}
	return iv, nil
}

func interviewPayload(iv *interview.Interview) notification.Payload {
	return notification.Payload{
		"interview_id":       iv.ID,
		"application_id":     iv.ApplicationID,
		"scheduled_datetime": iv.ScheduledAt.Format(time.RFC3339),
		"mode":               iv.Mode,
		"status":             iv.Status,
	}
}
