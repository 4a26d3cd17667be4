package jitter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff_DoublesWithoutJitter(t *testing.T) {
	b := Backoff{Base: time.Second}

	assert.Equal(t, time.Second, b.Delay(0))
	assert.Equal(t, 2*time.Second, b.Delay(1))
	assert.Equal(t, 4*time.Second, b.Delay(2))
}

func TestExponentialBackoff_CappedByMax(t *testing.T) {
	got := ExponentialBackoff(time.Second, 3*time.Second, 5, 0)

	assert.Equal(t, 3*time.Second, got)
}

func TestDuration_StaysWithinJitterRange(t *testing.T) {
	base := 100 * time.Millisecond

	for i := 0; i < 50; i++ {
		d := Duration(base, DefaultJitter)
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, base+base/2)
	}
}
