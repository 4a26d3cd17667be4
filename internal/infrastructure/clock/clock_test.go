package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemClock_IsExpired(t *testing.T) {
	c := NewSystemClock(nil)

	assert.True(t, c.IsExpired(c.Now().Add(time.Hour), 3*time.Hour))
	assert.False(t, c.IsExpired(c.Now().Add(10*time.Hour), 3*time.Hour))
	assert.True(t, c.IsExpired(c.Now().Add(-time.Minute), 0))
}

func TestSystemClock_Today(t *testing.T) {
	c := NewSystemClock(time.UTC)

	today := c.Today()
	assert.Equal(t, 0, today.Hour())
	assert.Equal(t, 0, today.Minute())
	assert.Equal(t, c.Now().Day(), today.Day())
}

func TestSystemClock_SleepCancelled(t *testing.T) {
	c := NewSystemClock(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Sleep(ctx, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSystemClock_SleepElapses(t *testing.T) {
	c := NewSystemClock(nil)

	start := time.Now()
	require.NoError(t, c.Sleep(context.Background(), 10*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}
