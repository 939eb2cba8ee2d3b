package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func noJitter() float64 { return 0.5 }

func TestExponentialBackoff_NextDelay(t *testing.T) {
	b := NewExponentialBackoff(5,
		WithInitialDelay(100*time.Millisecond),
		WithMaxDelay(time.Second),
		WithRandom(noJitter),
	)

	assert.Equal(t, 100*time.Millisecond, b.NextDelay(0))
	assert.Equal(t, 200*time.Millisecond, b.NextDelay(1))
	assert.Equal(t, 400*time.Millisecond, b.NextDelay(2))
	assert.Equal(t, 800*time.Millisecond, b.NextDelay(3))
	assert.Equal(t, time.Second, b.NextDelay(4))
	assert.Equal(t, time.Second, b.NextDelay(50))
	assert.Equal(t, 5, b.MaxAttempts())
}

func TestExponentialBackoff_Multiplier(t *testing.T) {
	b := NewExponentialBackoff(3, WithMultiplier(3), WithJitter(0))

	assert.Equal(t, 100*time.Millisecond, b.NextDelay(0))
	assert.Equal(t, 300*time.Millisecond, b.NextDelay(1))
	assert.Equal(t, 900*time.Millisecond, b.NextDelay(2))
}

func TestExponentialBackoff_JitterBounds(t *testing.T) {
	low := NewExponentialBackoff(1, WithJitter(0.2), WithRandom(func() float64 { return 0 }))
	high := NewExponentialBackoff(1, WithJitter(0.2), WithRandom(func() float64 { return 0.999999 }))

	assert.Equal(t, 80*time.Millisecond, low.NextDelay(0))
	assert.InDelta(t, float64(120*time.Millisecond), float64(high.NextDelay(0)), float64(time.Microsecond))
}

func TestExponentialBackoff_RealJitterStaysInRange(t *testing.T) {
	b := NewExponentialBackoff(3, WithInitialDelay(time.Second), WithMaxDelay(time.Minute))
	for i := 0; i < 100; i++ {
		d := b.NextDelay(0)
		assert.GreaterOrEqual(t, d, 900*time.Millisecond)
		assert.LessOrEqual(t, d, 1100*time.Millisecond)
	}
}
