package app_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"internship_tracker/internal/app"
	"internship_tracker/internal/common"
	"internship_tracker/internal/domain/application"
	"internship_tracker/internal/domain/interview"
	"internship_tracker/internal/domain/notification"
	"internship_tracker/internal/domain/offer"
	"internship_tracker/internal/domain/tracking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestCompleteStepKeepsFirstCompletionTime(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)
	ctx := context.Background()
	docs := f.step(t, created.ID, tracking.StepDocumentVerification)

	first, err := f.tracking.CompleteStep(ctx, f.mentorCS, docs.ID, "transcript received")
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)
	assert.Equal(t, t0, *first.CompletedAt)

	f.clock.Advance(2 * time.Hour)
	second, err := f.tracking.CompleteStep(ctx, f.staff, docs.ID, "")
	require.NoError(t, err)
	assert.Equal(t, tracking.StepCompleted, second.Status)
	require.NotNil(t, second.CompletedAt)
	assert.Equal(t, t0, *second.CompletedAt)
	assert.Equal(t, "transcript received", second.Notes)

	stored := f.step(t, created.ID, tracking.StepDocumentVerification)
	assert.Equal(t, t0, *stored.CompletedAt)
	assert.Equal(t, int64(5), *stored.CompletedBy)
}

func TestCompleteStepAuthorization(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)
	ctx := context.Background()
	docs := f.step(t, created.ID, tracking.StepDocumentVerification)

	_, err := f.tracking.CompleteStep(ctx, f.student, docs.ID, "")
	assert.True(t, common.Is(err, common.CodeForbidden))
	_, err = f.tracking.CompleteStep(ctx, f.mentorIT, docs.ID, "")
	assert.True(t, common.Is(err, common.CodeForbidden))
	_, err = f.tracking.CompleteStep(ctx, f.rival, docs.ID, "")
	assert.True(t, common.Is(err, common.CodeForbidden))
	_, err = f.tracking.CompleteStep(ctx, f.staff, 9999, "")
	assert.True(t, common.Is(err, common.CodeNotFound))

	assert.Equal(t, tracking.StepPending, f.step(t, created.ID, tracking.StepDocumentVerification).Status)
}

func TestInitializeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)

	steps, err := f.tracking.Initialize(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Len(t, steps, 10)

	stored, err := f.store.Steps().ListByApplication(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 10)

	_, err = f.tracking.Initialize(context.Background(), 9999)
	assert.True(t, common.Is(err, common.CodeNotFound))
}

func TestScheduleInterviewRequiresInterviewer(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)
	ctx := context.Background()

	_, err := f.tracking.Dispatch(ctx, f.employer, app.ActionScheduleInterview, rawJSON(t, map[string]any{
		"application_id":     created.ID,
		"scheduled_datetime": t0.Add(48 * time.Hour),
	}))
	require.True(t, common.Is(err, common.CodeValidation), err)
	var appErr *common.Error
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "interviewer_id")

	interviews, err := f.store.Interviews().ListByApplication(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, interviews)
	assert.Equal(t, tracking.StepPending, f.step(t, created.ID, tracking.StepInterviewScheduling).Status)
}

func TestScheduleInterviewUnknownInterviewer(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)
	at := t0.Add(48 * time.Hour)

	_, err := f.tracking.ScheduleInterview(context.Background(), f.employer, app.ScheduleInterviewInput{
		ApplicationID: created.ID, InterviewerID: 777, ScheduledAt: &at,
	})
	assert.True(t, common.Is(err, common.CodeValidation))

	interviews, err := f.store.Interviews().ListByApplication(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, interviews)
}

func TestInterviewLifecycle(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)
	ctx := context.Background()
	at := t0.Add(48 * time.Hour)

	result, err := f.tracking.Dispatch(ctx, f.employer, app.ActionScheduleInterview, rawJSON(t, map[string]any{
		"application_id":     created.ID,
		"interviewer_id":     9,
		"scheduled_datetime": at,
		"location":           "Room 4",
	}))
	require.NoError(t, err)
	iv := result.(*interview.Interview)
	assert.Equal(t, interview.StatusScheduled, iv.Status)
	assert.Equal(t, interview.ModeOnline, iv.Mode)
	assert.Equal(t, interview.DefaultDurationMinutes, iv.DurationMinutes)
	assert.Equal(t, int64(42), iv.StudentID)
	assert.Equal(t, tracking.StepCompleted, f.step(t, created.ID, tracking.StepInterviewScheduling).Status)
	assert.Equal(t, 1, f.notifier.to(42, notification.EventInterviewScheduled))

	// Any interview status may follow any other.
	for _, status := range []interview.Status{interview.StatusCompleted, interview.StatusScheduled, interview.StatusNoShow} {
		updated, err := f.tracking.UpdateInterviewStatus(ctx, f.staff, app.UpdateInterviewStatusInput{InterviewID: iv.ID, Status: status})
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}

	_, err = f.tracking.UpdateInterviewStatus(ctx, f.rival, app.UpdateInterviewStatusInput{InterviewID: iv.ID, Status: interview.StatusCancelled})
	assert.True(t, common.Is(err, common.CodeForbidden))

	rating := 4
	withFeedback, err := f.tracking.RecordFeedback(ctx, f.employer, app.RecordFeedbackInput{InterviewID: iv.ID, Feedback: "solid Go skills", Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, "solid Go skills", withFeedback.Feedback)
	assert.Equal(t, 4, *withFeedback.Rating)
	assert.Equal(t, tracking.StepCompleted, f.step(t, created.ID, tracking.StepFeedbackCollection).Status)

	bad := 9
	_, err = f.tracking.RecordFeedback(ctx, f.employer, app.RecordFeedbackInput{InterviewID: iv.ID, Feedback: "x", Rating: &bad})
	assert.True(t, common.Is(err, common.CodeValidation))
}

func TestOfferStatusIsLoose(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)
	ctx := context.Background()

	o, err := f.tracking.CreateOffer(ctx, f.employer, app.CreateOfferInput{ApplicationID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, offer.StatusExtended, o.Status)
	assert.Equal(t, t0.Add(offerWindow), o.ResponseDeadline)

	for _, status := range []offer.Status{offer.StatusAccepted, offer.StatusDraft, offer.StatusRejected, offer.StatusExtended} {
		updated, err := f.tracking.UpdateOfferStatus(ctx, f.staff, app.UpdateOfferStatusInput{OfferID: o.ID, Status: status})
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}

	_, err = f.tracking.UpdateOfferStatus(ctx, f.student, app.UpdateOfferStatusInput{OfferID: o.ID, Status: offer.StatusDraft})
	assert.True(t, common.Is(err, common.CodeForbidden))
	_, err = f.tracking.UpdateOfferStatus(ctx, f.other, app.UpdateOfferStatusInput{OfferID: o.ID, Status: offer.StatusAccepted})
	assert.True(t, common.Is(err, common.CodeForbidden))

	signed := true
	accepted, err := f.tracking.UpdateOfferStatus(ctx, f.student, app.UpdateOfferStatusInput{OfferID: o.ID, Status: offer.StatusAccepted, ContractSigned: &signed})
	require.NoError(t, err)
	assert.True(t, accepted.ContractSigned)

	// The application status machine is independent of the offer record.
	stored, err := f.store.Applications().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusApplied, stored.Status)

	seen, err := f.tracking.GetOffer(ctx, f.student, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, seen.ID)
	_, err = f.tracking.GetOffer(ctx, f.rival, o.ID)
	assert.True(t, common.Is(err, common.CodeForbidden))
}

func TestMarkResumeViewedStampsFirstViewer(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)
	ctx := context.Background()

	viewed, err := f.tracking.MarkResumeViewed(ctx, f.mentorCS, app.MarkResumeViewedInput{ApplicationID: created.ID})
	require.NoError(t, err)
	require.NotNil(t, viewed.ResumeViewedBy)
	assert.Equal(t, int64(5), *viewed.ResumeViewedBy)

	f.clock.Advance(time.Hour)
	again, err := f.tracking.MarkResumeViewed(ctx, f.employer, app.MarkResumeViewedInput{ApplicationID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(5), *again.ResumeViewedBy)
	assert.Equal(t, t0, *again.ResumeViewedAt)
	assert.Equal(t, tracking.StepCompleted, f.step(t, created.ID, tracking.StepResumeReview).Status)

	view, err := f.tracking.GetTracking(ctx, f.student, created.ID)
	require.NoError(t, err)
	assert.True(t, view.ResumeStatus.Viewed)
	assert.Len(t, view.TrackingSteps, 10)
	assert.Empty(t, view.Interviews)
	assert.Empty(t, view.Offers)
}

func TestDispatchRejectsUnknownActionsAndRoles(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)
	ctx := context.Background()

	_, err := f.tracking.Dispatch(ctx, f.staff, "teleport", nil)
	assert.True(t, common.Is(err, common.CodeValidation))

	_, err = f.tracking.Dispatch(ctx, f.student, app.ActionCreateOffer, rawJSON(t, map[string]any{"application_id": created.ID}))
	assert.True(t, common.Is(err, common.CodeForbidden))

	_, err = f.tracking.Dispatch(ctx, f.employer, app.ActionCreateOffer, json.RawMessage(`{"application_id": "seven"}`))
	assert.True(t, common.Is(err, common.CodeValidation))

	step := f.step(t, created.ID, tracking.StepEmployerReview)
	result, err := f.tracking.Dispatch(ctx, f.employer, app.ActionCompleteStep, rawJSON(t, map[string]any{"step_id": step.ID, "notes": "shortlisted"}))
	require.NoError(t, err)
	assert.Equal(t, "shortlisted", result.(*tracking.Step).Notes)
}

func TestRealtimeEmbedsProgress(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)
	f.advance(t, created.ID, application.StatusMentorApproved)

	progress, err := f.tracking.Realtime(context.Background(), f.employer)
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, 2, progress[0].CompletedSteps)
	assert.Equal(t, 10, progress[0].TotalSteps)

	none, err := f.tracking.Realtime(context.Background(), f.rival)
	require.NoError(t, err)
	assert.Empty(t, none)
}
