package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterPerKeyBurst(t *testing.T) {
	l := NewMemoryLimiter(2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "apply:1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "apply:1")
	assert.False(t, ok, "third call within the minute is limited")

	ok, _ = l.Allow(ctx, "apply:2")
	assert.True(t, ok, "other keys have their own bucket")
}

func TestMemoryLimiterReset(t *testing.T) {
	l := NewMemoryLimiter(1)
	ctx := context.Background()
	_, _ = l.Allow(ctx, "a")
	_, _ = l.Allow(ctx, "b")

	l.Reset(1)
	ok, _ := l.Allow(ctx, "a")
	assert.True(t, ok)
}
