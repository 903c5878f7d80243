package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"internship_tracker/internal/app"
	"internship_tracker/internal/common"
	"internship_tracker/internal/domain/application"
	"internship_tracker/internal/domain/internship"
	"internship_tracker/internal/domain/notification"
	"internship_tracker/internal/domain/offer"
	"internship_tracker/internal/domain/tracking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSeedsTenStepLedger(t *testing.T) {
	f := newFixture(t)

	created := f.apply(t)

	assert.Equal(t, int64(42), created.StudentID)
	assert.Equal(t, int64(7), created.InternshipID)
	assert.Equal(t, application.StatusApplied, created.Status)
	require.Len(t, created.TrackingSteps, 10)
	for i, st := range created.TrackingSteps {
		assert.Equal(t, tracking.Ledger[i], st.Name)
		if i == 0 {
			assert.Equal(t, tracking.StepCompleted, st.Status)
			assert.NotNil(t, st.CompletedAt)
			continue
		}
		assert.Equal(t, tracking.StepPending, st.Status)
		assert.Nil(t, st.CompletedAt)
	}

	stored, err := f.store.Steps().ListByApplication(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 10)

	assert.Equal(t, 1, f.notifier.to(42, notification.EventApplicationCreated))
	assert.Equal(t, 1, f.notifier.to(9, notification.EventApplicationCreated))
}

func TestCreateRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.applications.Create(ctx, f.mentorCS, 7)
	assert.True(t, common.Is(err, common.CodeForbidden))

	_, err = f.applications.Create(ctx, f.student, 0)
	assert.True(t, common.Is(err, common.CodeValidation))

	_, err = f.applications.Create(ctx, f.student, 999)
	assert.True(t, common.Is(err, common.CodeNotFound))

	f.apply(t)
	_, err = f.applications.Create(ctx, f.student, 7)
	assert.True(t, common.Is(err, common.CodeConflict))

	_, err = f.internships.Close(ctx, f.employer, 7)
	require.NoError(t, err)
	_, err = f.applications.Create(ctx, f.other, 7)
	assert.True(t, common.Is(err, common.CodeValidation))
}

func TestCreateRespectsRateLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	limiter := &stubLimiter{allow: false}
	svc := app.NewApplicationService(f.store, f.notifier, limiter, nil, f.clock, offerWindow, f.log)
	_, err := svc.Create(ctx, f.student, 7)
	assert.True(t, common.Is(err, common.CodeRateLimited))
	assert.Equal(t, []string{"apply:42"}, limiter.keys)

	broken := &stubLimiter{err: errors.New("redis unavailable")}
	svc = app.NewApplicationService(f.store, f.notifier, broken, nil, f.clock, offerWindow, f.log)
	_, err = svc.Create(ctx, f.student, 7)
	assert.NoError(t, err)
}

func TestCreateRollsBackWhenLedgerFails(t *testing.T) {
	f := newFixtureWithStore(t, func(s app.Store) app.Store {
		return &faultyStore{Store: s, failBulkCreate: true}
	})

	_, err := f.applications.Create(context.Background(), f.student, 7)
	require.ErrorIs(t, err, errDiskFull)

	apps, err := f.store.Applications().List(context.Background(), application.Filter{})
	require.NoError(t, err)
	assert.Empty(t, apps)
	assert.Empty(t, f.notifier.events)
}

func TestMentorRejectSameDepartment(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)
	f.clock.Advance(time.Hour)

	rejected, err := f.applications.Reject(context.Background(), f.mentorCS, created.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusMentorRejected, rejected.Status)
	require.NotNil(t, rejected.MentorApprovedAt)
	assert.Equal(t, t0.Add(time.Hour), *rejected.MentorApprovedAt)
	require.NotNil(t, rejected.MentorID)
	assert.Equal(t, int64(5), *rejected.MentorID)

	step := f.step(t, created.ID, tracking.StepMentorReview)
	assert.Equal(t, tracking.StepCompleted, step.Status)
	assert.Equal(t, "APPLIED -> MENTOR_REJECTED", step.Notes)
	assert.Equal(t, 1, f.notifier.to(42, notification.EventStatusChanged))
}

func TestMentorOtherDepartmentIsForbidden(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)

	_, err := f.applications.Reject(context.Background(), f.mentorIT, created.ID)
	require.True(t, common.Is(err, common.CodeForbidden), err)

	stored, err := f.store.Applications().GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusApplied, stored.Status)
	assert.Nil(t, stored.MentorApprovedAt)
	assert.Equal(t, tracking.StepPending, f.step(t, created.ID, tracking.StepMentorReview).Status)
}

func TestIllegalTransitionLeavesStatusUnchanged(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)
	ctx := context.Background()

	for _, target := range []application.Status{
		application.StatusInterviewed, application.StatusOffered, application.StatusOfferAccepted,
		application.StatusCompleted, application.StatusApplied,
	} {
		_, err := f.applications.Transition(ctx, f.staff, created.ID, target)
		assert.True(t, common.Is(err, common.CodeIllegalTransition), "%s: %v", target, err)
	}

	_, err := f.applications.Transition(ctx, f.staff, created.ID, "HIRED")
	assert.True(t, common.Is(err, common.CodeValidation))

	stored, err := f.store.Applications().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusApplied, stored.Status)
}

func TestTransitionUnknownApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.applications.Transition(ctx, f.mentorCS, 12345, application.StatusMentorApproved)
	assert.True(t, common.Is(err, common.CodeNotFound), err)
	_, err = f.applications.Approve(ctx, f.mentorCS, 12345)
	assert.True(t, common.Is(err, common.CodeNotFound), err)
	_, err = f.applications.Reject(ctx, f.mentorCS, 12345)
	assert.True(t, common.Is(err, common.CodeNotFound), err)
	assert.Equal(t, 0, f.notifier.to(42, notification.EventStatusChanged))
}

func TestWrongRoleForLegalEdgeIsForbidden(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)
	ctx := context.Background()

	_, err := f.applications.Approve(ctx, f.employer, created.ID)
	assert.True(t, common.Is(err, common.CodeForbidden))

	f.advance(t, created.ID, application.StatusMentorApproved)
	_, err = f.applications.Transition(ctx, f.rival, created.ID, application.StatusInterviewed)
	assert.True(t, common.Is(err, common.CodeForbidden))
	_, err = f.applications.Transition(ctx, f.student, created.ID, application.StatusInterviewed)
	assert.True(t, common.Is(err, common.CodeForbidden))
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)
	ctx := context.Background()

	f.advance(t, created.ID,
		application.StatusMentorApproved,
		application.StatusInterviewed,
		application.StatusOffered,
	)

	offers, err := f.store.Offers().ListByApplication(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, offer.StatusExtended, offers[0].Status)
	assert.Equal(t, t0.Add(offerWindow), offers[0].ResponseDeadline)
	assert.Equal(t, f.companyID, offers[0].CompanyID)
	assert.Equal(t, 1, f.notifier.to(42, notification.EventOfferCreated))

	f.advance(t, created.ID, application.StatusOfferAccepted, application.StatusCompleted)

	accepted, err := f.store.Offers().GetByID(ctx, offers[0].ID)
	require.NoError(t, err)
	assert.Equal(t, offer.StatusAccepted, accepted.Status)

	done, err := f.store.Applications().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)
	assert.True(t, done.Status.Terminal())

	for _, name := range []tracking.StepName{
		tracking.StepMentorReview, tracking.StepInterviewProcess, tracking.StepFinalDecision, tracking.StepOfferProcessing,
	} {
		assert.Equal(t, tracking.StepCompleted, f.step(t, created.ID, name).Status, name)
	}
}

func TestOfferedKeepsExistingOffer(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)
	ctx := context.Background()
	f.advance(t, created.ID, application.StatusMentorApproved, application.StatusInterviewed)

	_, err := f.tracking.CreateOffer(ctx, f.employer, app.CreateOfferInput{ApplicationID: created.ID, Status: offer.StatusDraft})
	require.NoError(t, err)
	f.advance(t, created.ID, application.StatusOffered)

	offers, err := f.store.Offers().ListByApplication(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, offer.StatusDraft, offers[0].Status)
}

func TestOfferAcceptedPicksExtendedOffer(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)
	ctx := context.Background()
	f.advance(t, created.ID, application.StatusMentorApproved, application.StatusInterviewed)

	extended, err := f.tracking.CreateOffer(ctx, f.employer, app.CreateOfferInput{ApplicationID: created.ID, Status: offer.StatusExtended})
	require.NoError(t, err)
	draft, err := f.tracking.CreateOffer(ctx, f.employer, app.CreateOfferInput{ApplicationID: created.ID, Status: offer.StatusDraft})
	require.NoError(t, err)
	f.advance(t, created.ID, application.StatusOffered, application.StatusOfferAccepted)

	got, err := f.store.Offers().GetByID(ctx, extended.ID)
	require.NoError(t, err)
	assert.Equal(t, offer.StatusAccepted, got.Status)
	got, err = f.store.Offers().GetByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, offer.StatusDraft, got.Status)
}

func TestOfferAcceptedLeavesRejectedOffer(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)
	ctx := context.Background()
	f.advance(t, created.ID, application.StatusMentorApproved, application.StatusInterviewed)

	rejected, err := f.tracking.CreateOffer(ctx, f.employer, app.CreateOfferInput{ApplicationID: created.ID, Status: offer.StatusRejected})
	require.NoError(t, err)
	f.advance(t, created.ID, application.StatusOffered, application.StatusOfferAccepted)

	got, err := f.store.Offers().GetByID(ctx, rejected.ID)
	require.NoError(t, err)
	assert.Equal(t, offer.StatusRejected, got.Status)
}

func TestTransitionRollsBackWhenStepFails(t *testing.T) {
	f := newFixtureWithStore(t, func(s app.Store) app.Store {
		return &faultyStore{Store: s, failUpdate: true}
	})
	created, err := f.applications.Create(context.Background(), f.student, 7)
	require.NoError(t, err)

	_, err = f.applications.Approve(context.Background(), f.mentorCS, created.ID)
	require.ErrorIs(t, err, errDiskFull)

	stored, err := f.store.Applications().GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusApplied, stored.Status)
	assert.Nil(t, stored.MentorID)
	assert.Equal(t, 0, f.notifier.to(42, notification.EventStatusChanged))
}

func TestNotificationFailureDoesNotUndoTransition(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)
	f.notifier.err = errors.New("smtp down")

	approved, err := f.applications.Approve(context.Background(), f.mentorCS, created.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusMentorApproved, approved.Status)
}

func TestListIsScopedByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.apply(t)

	require.NoError(t, f.store.Internships().Create(ctx, &internship.Internship{
		ID: 8, CompanyID: 4, PostedBy: 10, Title: "Data intern", Status: internship.StatusOpen,
	}))
	_, err := f.applications.Create(ctx, f.other, 8)
	require.NoError(t, err)

	cases := []struct {
		name  string
		actor app.Actor
		want  int
	}{
		{"student sees own", f.student, 1},
		{"mentor sees department", f.mentorCS, 1},
		{"employer sees company", f.employer, 1},
		{"other employer sees company", f.rival, 1},
		{"staff sees all", f.staff, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			apps, err := f.applications.List(ctx, tc.actor)
			require.NoError(t, err)
			assert.Len(t, apps, tc.want)
		})
	}

	_, err = f.applications.Get(ctx, f.mentorIT, created.ID)
	assert.True(t, common.Is(err, common.CodeForbidden))
	got, err := f.applications.Get(ctx, f.employer, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}
