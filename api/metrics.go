package api

import (
	"sort"
	"sync"
	"time"
)

// RouteMetrics aggregates timings for one route
type RouteMetrics struct {
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	Count       int64         `json:"count"`
	ErrorCount  int64         `json:"errorCount"`
	TotalTime   time.Duration `json:"totalTime"`
	AvgTime     time.Duration `json:"avgTime"`
	MinTime     time.Duration `json:"minTime"`
	MaxTime     time.Duration `json:"maxTime"`
	LastRequest time.Time     `json:"lastRequest"`
}

// Metrics collects per route request metrics since start up
type Metrics struct {
	mu      sync.RWMutex
	started time.Time
	routes  map[string]*RouteMetrics
}

// NewMetrics returns an empty collector
func NewMetrics() *Metrics {
	return &Metrics{started: time.Now(), routes: make(map[string]*RouteMetrics)}
}

// Record adds one finished request
func (m *Metrics) Record(method, path string, status int, d time.Duration) {
	key := method + " " + path
	m.mu.Lock()
	defer m.mu.Unlock()

	rm, ok := m.routes[key]
	if !ok {
		rm = &RouteMetrics{Method: method, Path: path, MinTime: d}
		m.routes[key] = rm
	}
	rm.Count++
	if status >= 400 {
		rm.ErrorCount++
	}
	rm.TotalTime += d
	rm.AvgTime = rm.TotalTime / time.Duration(rm.Count)
	if d < rm.MinTime {
		rm.MinTime = d
	}
	if d > rm.MaxTime {
		rm.MaxTime = d
	}
	rm.LastRequest = time.Now()
}

// Routes returns a copy of every route's metrics, slowest average first
func (m *Metrics) Routes() []RouteMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]RouteMetrics, 0, len(m.routes))
	for _, rm := range m.routes {
		out = append(out, *rm)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgTime == out[j].AvgTime {
			return out[i].Path < out[j].Path
		}
		return out[i].AvgTime > out[j].AvgTime
	})
	return out
}

// Summary reports totals across all routes
func (m *Metrics) Summary() map[string]interface{} {
	routes := m.Routes()
	var total, errors int64
	for _, rm := range routes {
		total += rm.Count
		errors += rm.ErrorCount
	}
	errorRate := 0.0
	if total > 0 {
		errorRate = float64(errors) / float64(total)
	}
	return map[string]interface{}{
		"uptime":        time.Since(m.started).Round(time.Second).String(),
		"totalRequests": total,
		"errorCount":    errors,
		"errorRate":     errorRate,
		"routes":        routes,
	}
}
