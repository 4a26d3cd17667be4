package closer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloser_ClosesInReverseOrder(t *testing.T) {
	c := NewCloser(0)

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) Func {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}

	c.Add("db", record("db"))
	c.Add("kafka", record("kafka"))
	c.Add("http", record("http"))

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"http", "kafka", "db"}, order)
}

func TestCloser_ReportsNamedErrors(t *testing.T) {
	c := NewCloser(0)
	c.Add("redis", func(context.Context) error { return errors.New("connection reset") })
	c.Add("http", func(context.Context) error { return nil })

	err := c.Close(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis: connection reset")
}

func TestCloser_ForcesRemainingOnTimeout(t *testing.T) {
	c := NewCloser(100 * time.Millisecond)

	var outboxCalls, stuckCalls atomic.Int32
	release := make(chan struct{})
	defer close(release)

	c.Add("outbox", func(context.Context) error {
		outboxCalls.Add(1)
		return nil
	})
	c.Add("stuck", func(context.Context) error {
		// первый вызов зависает, принудительный завершается сразу
		if stuckCalls.Add(1) == 1 {
			<-release
		}
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Close(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutdown interrupted after 0/2 funcs")
	assert.Equal(t, int32(1), outboxCalls.Load())
	assert.Equal(t, int32(2), stuckCalls.Load())
}

func TestCloser_CloseIsIdempotent(t *testing.T) {
	c := NewCloser(0)

	var calls atomic.Int32
	c.Add("redis", func(context.Context) error {
		calls.Add(1)
		return errors.New("connection reset")
	})

	first := c.Close(context.Background())
	second := c.Close(context.Background())

	require.Error(t, first)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}
