package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// RequestMetrics tracks API latency per route plus request and error counts.
type RequestMetrics struct {
	Overall *Histogram

	Requests atomic.Uint64
	Errors   atomic.Uint64 // responses with status >= 500

	mu        sync.RWMutex
	routes    map[string]*Histogram
	startTime time.Time
}

// NewRequestMetrics creates an empty collector.
func NewRequestMetrics() *RequestMetrics {
	return &RequestMetrics{
		Overall:   NewHistogram(DefaultMaxSamples),
		routes:    make(map[string]*Histogram),
		startTime: time.Now(),
	}
}

// Observe records one finished request.
func (m *RequestMetrics) Observe(route string, status int, d time.Duration) {
	m.Requests.Add(1)
	if status >= 500 {
		m.Errors.Add(1)
	}
	m.Overall.Record(d)
	m.route(route).Record(d)
}

func (m *RequestMetrics) route(name string) *Histogram {
	m.mu.RLock()
	h, ok := m.routes[name]
	m.mu.RUnlock()
	if ok {
		return h
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok = m.routes[name]; !ok {
		h = NewHistogram(1000)
		m.routes[name] = h
	}
	return h
}

// RouteSummary is the latency summary of one route.
type RouteSummary struct {
	Route string `json:"route"`
	Summary
}

// Snapshot is a point-in-time view of all request metrics.
type Snapshot struct {
	UptimeSeconds float64        `json:"uptime_seconds"`
	Requests      uint64         `json:"requests"`
	Errors        uint64         `json:"errors"`
	Latency       Summary        `json:"latency"`
	Routes        []RouteSummary `json:"routes"`
}

// Snapshot returns current metrics with routes sorted by name.
func (m *RequestMetrics) Snapshot() Snapshot {
	m.mu.RLock()
	routes := make([]RouteSummary, 0, len(m.routes))
	for name, h := range m.routes {
		routes = append(routes, RouteSummary{Route: name, Summary: h.Summary()})
	}
	m.mu.RUnlock()

	sort.Slice(routes, func(i, j int) bool { return routes[i].Route < routes[j].Route })

	return Snapshot{
		UptimeSeconds: time.Since(m.startTime).Seconds(),
		Requests:      m.Requests.Load(),
		Errors:        m.Errors.Load(),
		Latency:       m.Overall.Summary(),
		Routes:        routes,
	}
}
