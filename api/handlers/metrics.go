package handlers

import (
	"net/http"
	"strconv"

	"github.com/linesmerrill/legal-aid-api/api"
)

// formatRouteMetrics converts duration fields to milliseconds for JSON serialization
func formatRouteMetrics(routes []api.RouteMetrics) []map[string]interface{} {
	result := make([]map[string]interface{}, len(routes))
	for i, route := range routes {
		result[i] = map[string]interface{}{
			"method":      route.Method,
			"path":        route.Path,
			"count":       route.Count,
			"errorCount":  route.ErrorCount,
			"avgTime":     route.AvgTime.Milliseconds(),
			"minTime":     route.MinTime.Milliseconds(),
			"maxTime":     route.MaxTime.Milliseconds(),
			"lastRequest": route.LastRequest,
		}
	}
	return result
}

// MetricsHandler serves the request metrics collected since start up
type MetricsHandler struct {
	Metrics *api.Metrics
}

// GetMetricsDashboard returns totals and the slowest routes. ?limit= caps the
// number of routes, default 20.
func (m MetricsHandler) GetMetricsDashboard(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	summary := m.Metrics.Summary()
	routes, _ := summary["routes"].([]api.RouteMetrics)
	if len(routes) > limit {
		routes = routes[:limit]
	}
	summary["routes"] = formatRouteMetrics(routes)
	writeJSON(w, http.StatusOK, summary)
}
