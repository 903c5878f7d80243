package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLedger(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	steps := NewLedger(12, now)

	require.Len(t, steps, 10)
	for i, s := range steps {
		assert.Equal(t, int64(12), s.ApplicationID)
		assert.Equal(t, Ledger[i], s.Name)
		assert.Equal(t, i, s.Position)
	}
	assert.Equal(t, StepCompleted, steps[0].Status)
	assert.Equal(t, now, *steps[0].CompletedAt)
	assert.Equal(t, StepPending, steps[9].Status)
	assert.Equal(t, StepOfferProcessing, steps[9].Name)
}

func TestCompleteKeepsFirstTimestamp(t *testing.T) {
	first := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	s := &Step{Name: StepMentorReview, Status: StepPending}

	s.Complete("approved", 5, first)
	s.Complete("", 6, first.Add(time.Hour))

	assert.Equal(t, StepCompleted, s.Status)
	assert.Equal(t, first, *s.CompletedAt)
	assert.Equal(t, int64(5), *s.CompletedBy)
	assert.Equal(t, "approved", s.Notes)
	assert.Equal(t, first.Add(time.Hour), s.UpdatedAt)
}
