package delay

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHistoryRecordAndObserve(t *testing.T) {
	h := NewHistory()
	assert.Equal(t, 0, h.Count(1))
	assert.Nil(t, h.Observations(1))

	h.Record(1, 10*time.Minute)
	h.Record(1, 15*time.Minute)
	h.Record(2, 5*time.Minute)

	assert.Equal(t, 2, h.Count(1))
	obs := h.Observations(1)
	assert.Equal(t, []time.Duration{10 * time.Minute, 15 * time.Minute}, obs)
}

func TestHistoryObservationsReturnsACopy(t *testing.T) {
	h := NewHistory()
	h.Record(1, time.Minute)

	obs := h.Observations(1)
	obs[0] = time.Hour

	again := h.Observations(1)
	assert.Equal(t, time.Minute, again[0], "mutating the returned slice affected the history")
}

func TestHistoryConcurrentAccess(t *testing.T) {
	h := NewHistory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Record(1, time.Duration(i)*time.Second)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, h.Count(1))
}
