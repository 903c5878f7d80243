package app_test

import (
	"context"
	"testing"
	"time"

	"internship_tracker/internal/app"
	"internship_tracker/internal/domain/application"
	"internship_tracker/internal/domain/interview"
	"internship_tracker/internal/domain/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterviewRemindersAreSentOnce(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)
	ctx := context.Background()

	soon := t0.Add(10 * time.Hour)
	later := t0.Add(72 * time.Hour)
	for _, at := range []time.Time{soon, later} {
		_, err := f.tracking.ScheduleInterview(ctx, f.employer, app.ScheduleInterviewInput{
			ApplicationID: created.ID, InterviewerID: 9, ScheduledAt: &at, Location: "Room 4",
		})
		require.NoError(t, err)
	}

	sent, err := f.reminders.SendInterviewReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, f.notifier.to(42, notification.EventInterviewReminder))
	assert.Equal(t, 1, f.notifier.to(9, notification.EventInterviewReminder))

	sent, err = f.reminders.SendInterviewReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	f.clock.Advance(50 * time.Hour)
	sent, err = f.reminders.SendInterviewReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 2, f.notifier.to(42, notification.EventInterviewReminder))
}

func TestCancelledInterviewIsNotReminded(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)
	ctx := context.Background()
	at := t0.Add(time.Hour)

	iv, err := f.tracking.ScheduleInterview(ctx, f.employer, app.ScheduleInterviewInput{ApplicationID: created.ID, InterviewerID: 9, ScheduledAt: &at})
	require.NoError(t, err)
	_, err = f.tracking.UpdateInterviewStatus(ctx, f.employer, app.UpdateInterviewStatusInput{InterviewID: iv.ID, Status: interview.StatusCancelled})
	require.NoError(t, err)

	sent, err := f.reminders.SendInterviewReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}

func TestOfferDeadlineReminders(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t)
	ctx := context.Background()
	f.advance(t, created.ID, application.StatusMentorApproved, application.StatusInterviewed, application.StatusOffered)

	sent, err := f.reminders.SendOfferDeadlineReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	f.clock.Advance(6 * 24 * time.Hour)
	sent, err = f.reminders.SendOfferDeadlineReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, f.notifier.to(42, notification.EventOfferDeadlineReminder))

	sent, err = f.reminders.SendOfferDeadlineReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}
