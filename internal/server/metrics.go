package server

import (
	"sync"
	"time"
)

// metrics holds the run counters behind GET /metrics.
type metrics struct {
	mu          sync.RWMutex
	renders     int64
	errors      int64
	cacheHits   int64
	durationSum time.Duration
}

// MetricsResponse is the GET /metrics body.
type MetricsResponse struct {
	RendersTotal          int64   `json:"renders_total"`
	Errors                int64   `json:"errors"`
	CacheHits             int64   `json:"cache_hits"`
	AvgRenderDurationSecs float64 `json:"avg_render_duration_seconds"`
}

func (m *metrics) recordRender(d time.Duration, cacheHit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renders++
	m.durationSum += d
	if cacheHit {
		m.cacheHits++
	}
}

func (m *metrics) recordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors++
}

func (m *metrics) snapshot() MetricsResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()

	avg := 0.0
	if m.renders > 0 {
		avg = m.durationSum.Seconds() / float64(m.renders)
	}
	return MetricsResponse{
		RendersTotal:          m.renders,
		Errors:                m.errors,
		CacheHits:             m.cacheHits,
		AvgRenderDurationSecs: avg,
	}
}
