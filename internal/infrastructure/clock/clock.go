package clock

import (
	"context"
	"time"
)

// SystemClock — реальное время процесса в заданной временной зоне.
type SystemClock struct {
	loc *time.Location
}

// NewSystemClock создаёт часы. При loc == nil используется UTC.
func NewSystemClock(loc *time.Location) *SystemClock {
	if loc == nil {
		loc = time.UTC
	}

	return &SystemClock{loc: loc}
}

func (c *SystemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Today возвращает начало текущих суток.
func (c *SystemClock) Today() time.Time {
	now := c.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc)
}

func (c *SystemClock) AddDays(n int) time.Time {
	return c.Now().AddDate(0, 0, n)
}

func (c *SystemClock) AddHours(n int) time.Time {
	return c.Now().Add(time.Duration(n) * time.Hour)
}

// IsExpired истинно, если now + buffer >= at.
func (c *SystemClock) IsExpired(at time.Time, buffer time.Duration) bool {
	return !c.Now().Add(buffer).Before(at)
}

// Sleep ждёт d или отмены контекста.
func (c *SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
