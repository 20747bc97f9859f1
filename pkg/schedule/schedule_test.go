package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchField(t *testing.T) {
	assert.True(t, matchField("*", 7))
	assert.True(t, matchField("*/15", 30))
	assert.False(t, matchField("*/15", 31))
	assert.True(t, matchField("1-5", 3))
	assert.False(t, matchField("1-5", 6))
	assert.True(t, matchField("3", 3))
	assert.False(t, matchField("x", 3))
}

func TestCronDueOncePerMinute(t *testing.T) {
	s := New()
	require.NoError(t, s.Cron("30 3 * * *", "nightly", func(context.Context) error { return nil }))
	e := s.entries[0]

	at := time.Date(2026, 3, 1, 3, 30, 10, 0, time.UTC)
	assert.True(t, e.due(at))
	e.lastRun = at
	assert.False(t, e.due(at.Add(20*time.Second)))
	assert.False(t, e.due(at.Add(time.Hour)))

	assert.Error(t, s.Cron("* *", "broken", nil))
}

func TestRunDispatchesIntervalTasks(t *testing.T) {
	s := New()
	s.tick = 5 * time.Millisecond

	var runs atomic.Int32
	s.Every(10*time.Millisecond, "counter", func(context.Context) error {
		runs.Add(1)
		return nil
	})
	assert.Equal(t, []string{"counter [10ms]"}, s.Names())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
