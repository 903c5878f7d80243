package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"internship_tracker/internal/common"
	"internship_tracker/internal/domain/interview"
	"internship_tracker/internal/domain/offer"
	"internship_tracker/internal/domain/user"
)

// Action selects which input struct the data of a tracking request decodes into.
type Action string

const (
	ActionCompleteStep          Action = "complete_step"
	ActionScheduleInterview     Action = "schedule_interview"
	ActionUpdateInterviewStatus Action = "update_interview_status"
	ActionCreateOffer           Action = "create_offer"
	ActionUpdateOfferStatus     Action = "update_offer_status"
	ActionRecordFeedback        Action = "record_feedback"
	ActionMarkResumeViewed      Action = "mark_resume_viewed"
)

type CompleteStepInput struct {
	StepID int64  `json:"step_id" validate:"required"`
	Notes  string `json:"notes" validate:"max=2000"`
}

type ScheduleInterviewInput struct {
	ApplicationID   int64          `json:"application_id" validate:"required"`
	InterviewerID   int64          `json:"interviewer_id" validate:"required"`
	ScheduledAt     *time.Time     `json:"scheduled_datetime" validate:"required"`
	DurationMinutes int            `json:"duration_minutes" validate:"omitempty,min=5,max=480"`
	Mode            interview.Mode `json:"mode" validate:"omitempty,oneof=ONLINE IN_PERSON PHONE"`
	Location        string         `json:"location" validate:"max=500"`
}

type UpdateInterviewStatusInput struct {
	InterviewID int64            `json:"interview_id" validate:"required"`
	Status      interview.Status `json:"status" validate:"required,oneof=SCHEDULED RESCHEDULED COMPLETED CANCELLED NO_SHOW"`
	ScheduledAt *time.Time       `json:"scheduled_datetime"`
	Feedback    *string          `json:"feedback"`
	Rating      *int             `json:"rating" validate:"omitempty,min=1,max=5"`
}

type RecordFeedbackInput struct {
	InterviewID int64  `json:"interview_id" validate:"required"`
	Feedback    string `json:"feedback" validate:"required,max=5000"`
	Rating      *int   `json:"rating" validate:"omitempty,min=1,max=5"`
}

type CreateOfferInput struct {
	ApplicationID    int64        `json:"application_id" validate:"required"`
	Status           offer.Status `json:"offer_status" validate:"omitempty,oneof=DRAFT EXTENDED ACCEPTED REJECTED"`
	Stipend          *float64     `json:"stipend" validate:"omitempty,min=0"`
	StartDate        *time.Time   `json:"start_date"`
	ResponseDeadline *time.Time   `json:"response_deadline"`
}

type UpdateOfferStatusInput struct {
	OfferID        int64        `json:"offer_id" validate:"required"`
	Status         offer.Status `json:"offer_status" validate:"required,oneof=DRAFT EXTENDED ACCEPTED REJECTED"`
	ContractSigned *bool        `json:"contract_signed"`
}

type MarkResumeViewedInput struct {
	ApplicationID int64 `json:"application_id" validate:"required"`
}

var actionRoles = map[Action][]user.Role{
	ActionCompleteStep:          completeStepRoles,
	ActionScheduleInterview:     employerOrStaff,
	ActionUpdateInterviewStatus: employerOrStaff,
	ActionRecordFeedback:        employerOrStaff,
	ActionCreateOffer:           employerOrStaff,
	ActionUpdateOfferStatus:     {user.RoleStudent, user.RoleEmployer, user.RoleStaff},
	ActionMarkResumeViewed:      {user.RoleMentor, user.RoleEmployer, user.RoleStaff},
}

// Dispatch decodes data into the input of action and runs it.
func (s *TrackingService) Dispatch(ctx context.Context, actor Actor, action Action, data json.RawMessage) (any, error) {
	roles, ok := actionRoles[action]
	if !ok {
		return nil, common.NewValidationError(fmt.Sprintf("unknown action %q", action), map[string]string{"action": "oneof"})
	}
	if !actor.HasRole(roles...) {
		return nil, errForbidden(fmt.Sprintf("role %s cannot perform %s", actor.Role, action))
	}

	result, err := s.dispatch(ctx, actor, action, data)
	outcome := "ok"
	if err != nil {
		outcome = string(common.CodeOf(err))
	}
	s.rec.RecordTrackingAction(string(action), outcome)
	return result, err
}

func (s *TrackingService) dispatch(ctx context.Context, actor Actor, action Action, data json.RawMessage) (any, error) {
	switch action {
	case ActionCompleteStep:
		var in CompleteStepInput
		if err := decodeActionData(data, &in); err != nil {
			return nil, err
		}
		if err := checkInput(in); err != nil {
			return nil, err
		}
		return s.CompleteStep(ctx, actor, in.StepID, in.Notes)
	case ActionScheduleInterview:
		var in ScheduleInterviewInput
		if err := decodeActionData(data, &in); err != nil {
			return nil, err
		}
		return s.ScheduleInterview(ctx, actor, in)
	case ActionUpdateInterviewStatus:
		var in UpdateInterviewStatusInput
		if err := decodeActionData(data, &in); err != nil {
			return nil, err
		}
		return s.UpdateInterviewStatus(ctx, actor, in)
	case ActionRecordFeedback:
		var in RecordFeedbackInput
		if err := decodeActionData(data, &in); err != nil {
			return nil, err
		}
		return s.RecordFeedback(ctx, actor, in)
	case ActionCreateOffer:
		var in CreateOfferInput
		if err := decodeActionData(data, &in); err != nil {
			return nil, err
		}
		return s.CreateOffer(ctx, actor, in)
	case ActionUpdateOfferStatus:
		var in UpdateOfferStatusInput
		if err := decodeActionData(data, &in); err != nil {
			return nil, err
		}
		return s.UpdateOfferStatus(ctx, actor, in)
	case ActionMarkResumeViewed:
		var in MarkResumeViewedInput
		if err := decodeActionData(data, &in); err != nil {
			return nil, err
		}
		return s.MarkResumeViewed(ctx, actor, in)
	}
	return nil, common.NewValidationError(fmt.Sprintf("unknown action %q", action), map[string]string{"action": "oneof"})
}

func decodeActionData(data json.RawMessage, dst any) error {
	if len(data) == 0 || string(data) == "null" {
		data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return common.NewError(common.CodeValidation, "malformed action data", err)
	}
	return nil
}
