package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptCall struct {
	sha  string
	keys []string
	args []interface{}
}

// scriptStub evaluates the fixed-window script in memory. Methods other than
// EvalSha are not used by the limiter.
type scriptStub struct {
	redis.Scripter
	counts map[string]int64
	calls  []scriptCall
	err    error
}

func newScriptStub() *scriptStub {
	return &scriptStub{counts: make(map[string]int64)}
}

func (s *scriptStub) EvalSha(_ context.Context, sha1 string, keys []string, args ...interface{}) *redis.Cmd {
	s.calls = append(s.calls, scriptCall{sha: sha1, keys: keys, args: args})
	if s.err != nil {
		return redis.NewCmdResult(nil, s.err)
	}
	s.counts[keys[0]]++
	if s.counts[keys[0]] > int64(args[1].(int)) {
		return redis.NewCmdResult(int64(0), nil)
	}
	return redis.NewCmdResult(int64(1), nil)
}

func TestRedisLimiterFixedWindow(t *testing.T) {
	stub := newScriptStub()
	l := NewRedisLimiter(stub, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "apply:42")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "apply:42")
	require.NoError(t, err)
	assert.False(t, ok)

	// other students have their own window
	ok, err = l.Allow(ctx, "apply:43")
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, stub.calls, 4)
	first := stub.calls[0]
	assert.Equal(t, redis.NewScript(fixedWindowScript).Hash(), first.sha)
	assert.Equal(t, []string{"internship_tracker:ratelimit:apply:42"}, first.keys)
	assert.Equal(t, []interface{}{int64(60000), 2}, first.args)
}

func TestRedisLimiterSubMillisecondWindow(t *testing.T) {
	stub := newScriptStub()
	l := NewRedisLimiter(stub, 1, time.Microsecond)

	_, err := l.Allow(context.Background(), "apply:42")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stub.calls[0].args[0])
}

func TestRedisLimiterPropagatesErrors(t *testing.T) {
	stub := newScriptStub()
	stub.err = errors.New("connection refused")
	l := NewRedisLimiter(stub, 5, time.Minute)

	ok, err := l.Allow(context.Background(), "apply:42")
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
