package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewTimer tests timer creation
func TestNewTimer(t *testing.T) {
	timer := NewTimer()

	require.NotNil(t, timer, "NewTimer() returned nil")
	assert.False(t, timer.start.IsZero(), "NewTimer() start time is zero")

	// Verify start time is recent (within last second)
	assert.LessOrEqual(t, time.Since(timer.start), time.Second, "NewTimer() start time is not recent")
}

// TestTimerDuration tests duration measurement
func TestTimerDuration(t *testing.T) {
	timer := NewTimer()

	// Sleep for a known duration
	sleepDuration := 100 * time.Millisecond
	time.Sleep(sleepDuration)

	duration := timer.Duration()

	// Verify duration is at least the sleep duration (allowing small overhead)
	assert.GreaterOrEqual(t, duration, sleepDuration)

	// Verify duration is reasonable (less than 2x sleep duration)
	assert.Less(t, duration, 2*sleepDuration)
}

// TestTimerObserveDuration tests histogram observation
func TestTimerObserveDuration(t *testing.T) {
	// Create a test histogram
	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_duration_seconds",
		Help:    "Test duration histogram",
		Buckets: prometheus.DefBuckets,
	})

	timer := NewTimer()
	time.Sleep(50 * time.Millisecond)

	// This should not panic
	timer.ObserveDuration(histogram)

	// Verify the timer recorded a non-zero duration
	assert.NotZero(t, timer.Duration(), "Timer.ObserveDuration() recorded zero duration")
}

// TestTimerObserveDurationVec tests histogram vec observation
func TestTimerObserveDurationVec(t *testing.T) {
	// Create a test histogram vec
	histogramVec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "test_duration_vec_seconds",
			Help:    "Test duration histogram vec",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	timer := NewTimer()
	time.Sleep(50 * time.Millisecond)

	// This should not panic
	timer.ObserveDurationVec(histogramVec, "test_operation")

	// Verify the timer recorded a non-zero duration
	assert.NotZero(t, timer.Duration(), "Timer.ObserveDurationVec() recorded zero duration")
}

// TestTimerMultipleCalls tests that Duration can be called multiple times
func TestTimerMultipleCalls(t *testing.T) {
	timer := NewTimer()

	time.Sleep(50 * time.Millisecond)
	duration1 := timer.Duration()

	time.Sleep(50 * time.Millisecond)
	duration2 := timer.Duration()

	// Second call should be longer
	assert.Greater(t, duration2, duration1, "second Duration() call should be longer")

	// Both should be non-zero
	assert.NotZero(t, duration1)
	assert.NotZero(t, duration2)
}

// TestTimerZeroDuration tests timer with minimal duration
func TestTimerZeroDuration(t *testing.T) {
	timer := NewTimer()

	// Don't sleep - check duration immediately
	duration := timer.Duration()

	// Duration should be very small but >= 0
	assert.GreaterOrEqual(t, duration, time.Duration(0))

	// Duration should be less than 1 millisecond
	assert.Less(t, duration, time.Millisecond, "Timer.Duration() want < 1ms for immediate call")
}

// TestMultipleTimers tests that multiple timers work independently
func TestMultipleTimers(t *testing.T) {
	timer1 := NewTimer()
	time.Sleep(50 * time.Millisecond)

	timer2 := NewTimer()
	time.Sleep(50 * time.Millisecond)

	duration1 := timer1.Duration()
	duration2 := timer2.Duration()

	// timer1 should be running longer
	assert.Greater(t, duration1, duration2, "timer1 should be running longer")

	// Both should be non-zero
	assert.NotZero(t, duration1)
	assert.NotZero(t, duration2)
}

// TestTimerConsistency tests that Duration returns consistent increasing values
func TestTimerConsistency(t *testing.T) {
	timer := NewTimer()

	var lastDuration time.Duration
	for i := 0; i < 5; i++ {
		time.Sleep(10 * time.Millisecond)
		duration := timer.Duration()

		assert.Greaterf(t, duration, lastDuration, "Duration should be monotonically increasing: iteration %d", i)

		lastDuration = duration
	}
}
