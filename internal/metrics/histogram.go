// Package metrics keeps in-process latency distributions for the API.
package metrics

import (
	"math"
	"sort"
	"sync"
	"time"
)

// DefaultMaxSamples bounds the samples a histogram keeps.
const DefaultMaxSamples = 10000

// Histogram tracks duration samples in milliseconds and reports percentiles.
type Histogram struct {
	mu      sync.RWMutex
	samples []float64
	maxSize int
}

// NewHistogram creates a histogram keeping at most maxSize samples. When
// full, the oldest fifth is dropped.
func NewHistogram(maxSize int) *Histogram {
	if maxSize <= 0 {
		maxSize = DefaultMaxSamples
	}
	return &Histogram{
		samples: make([]float64, 0, min(maxSize, 1024)),
		maxSize: maxSize,
	}
}

// Record adds a duration sample.
func (h *Histogram) Record(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.samples = append(h.samples, float64(d.Microseconds())/1000.0)
	if len(h.samples) > h.maxSize {
		drop := max(h.maxSize/5, 1)
		h.samples = append(h.samples[:0], h.samples[drop:]...)
	}
}

// Count returns the number of samples kept.
func (h *Histogram) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.samples)
}

// Percentile returns the p-th percentile (0-100) with linear interpolation
// between the closest ranks.
func (h *Histogram) Percentile(p float64) float64 {
	return percentile(h.sorted(), p)
}

// Reset clears all samples.
func (h *Histogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples = h.samples[:0]
}

// Summary is a point-in-time view of a histogram. Values are milliseconds.
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean_ms"`
	Min   float64 `json:"min_ms"`
	Max   float64 `json:"max_ms"`
	P50   float64 `json:"p50_ms"`
	P95   float64 `json:"p95_ms"`
	P99   float64 `json:"p99_ms"`
}

// Summary computes all statistics from a single sorted copy.
func (h *Histogram) Summary() Summary {
	sorted := h.sorted()
	if len(sorted) == 0 {
		return Summary{}
	}

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return Summary{
		Count: len(sorted),
		Mean:  sum / float64(len(sorted)),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		P50:   percentile(sorted, 50),
		P95:   percentile(sorted, 95),
		P99:   percentile(sorted, 99),
	}
}

func (h *Histogram) sorted() []float64 {
	h.mu.RLock()
	out := make([]float64, len(h.samples))
	copy(out, h.samples)
	h.mu.RUnlock()

	sort.Float64s(out)
	return out
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	fraction := index - float64(lower)
	return sorted[lower]*(1-fraction) + sorted[upper]*fraction
}
