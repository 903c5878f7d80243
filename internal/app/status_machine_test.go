package app_test

import (
	"testing"

	"internship_tracker/internal/app"
	"internship_tracker/internal/domain/application"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedTransition(t *testing.T) {
	allowed := map[application.Status][]application.Status{
		application.StatusApplied:        {application.StatusMentorApproved, application.StatusMentorRejected},
		application.StatusMentorApproved: {application.StatusInterviewed},
		application.StatusInterviewed:    {application.StatusOffered, application.StatusNotOffered},
		application.StatusOffered:        {application.StatusOfferAccepted},
		application.StatusOfferAccepted:  {application.StatusCompleted},
	}
	all := []application.Status{
		application.StatusApplied, application.StatusMentorApproved, application.StatusMentorRejected,
		application.StatusInterviewed, application.StatusOffered, application.StatusNotOffered,
		application.StatusOfferAccepted, application.StatusCompleted,
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}
			assert.Equal(t, want, app.IsAllowedTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatusesHaveNoNextStatus(t *testing.T) {
	for _, s := range []application.Status{application.StatusMentorRejected, application.StatusNotOffered, application.StatusCompleted} {
		assert.True(t, s.Terminal())
		assert.Empty(t, app.NextStatuses(s), s)
	}
	assert.Equal(t,
		[]application.Status{application.StatusOffered, application.StatusNotOffered},
		app.NextStatuses(application.StatusInterviewed))
}
