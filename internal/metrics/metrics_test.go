package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogramSummary(t *testing.T) {
	h := NewHistogram(0)
	for i := 1; i <= 5; i++ {
		h.Record(time.Duration(i) * time.Millisecond)
	}

	s := h.Summary()
	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 3.0, s.Mean)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	assert.Equal(t, 3.0, s.P50)
	assert.InDelta(t, 4.8, s.P95, 1e-9)
	assert.Equal(t, 2.0, h.Percentile(25))
}

func TestHistogramEmptyAndReset(t *testing.T) {
	h := NewHistogram(10)
	assert.Equal(t, Summary{}, h.Summary())
	assert.Zero(t, h.Percentile(99))

	h.Record(time.Millisecond)
	h.Reset()
	assert.Zero(t, h.Count())
}

func TestHistogramTrimsOldest(t *testing.T) {
	h := NewHistogram(10)
	for i := 1; i <= 11; i++ {
		h.Record(time.Duration(i) * time.Millisecond)
	}

	assert.Equal(t, 9, h.Count())
	assert.Equal(t, 3.0, h.Summary().Min)
}

func TestRequestMetrics(t *testing.T) {
	m := NewRequestMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := 200
			if i%10 == 0 {
				status = 500
			}
			route := "GET /api/v1/stats/rankings"
			if i%2 == 0 {
				route = "GET /health"
			}
			m.Observe(route, status, time.Duration(i)*time.Millisecond)
		}(i)
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.Equal(t, uint64(20), snap.Requests)
	assert.Equal(t, uint64(2), snap.Errors)
	assert.Equal(t, 20, snap.Latency.Count)
	require.Len(t, snap.Routes, 2)
	assert.Equal(t, "GET /api/v1/stats/rankings", snap.Routes[0].Route)
	assert.Equal(t, 10, snap.Routes[0].Count)
}
