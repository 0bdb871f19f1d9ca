package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	})
}

// handleReady checks templates and the record store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.records == nil {
		checks["store"] = "not_configured"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else if err := s.records.Store().Ping(ctx); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	if s.dashboards != nil {
		stats := s.dashboards.Cache().Stats()
		checks["dashboard_cache"] = map[string]interface{}{
			"entries": stats.Size,
			"status":  "ok",
		}
	}

	writeJSON(w, httpStatus, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.tracer.GetMetrics()
	rateLimitMetrics := s.limiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()

	metric := func(name, help, typ string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, typ, name, value)
	}

	metric("http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests)
	metric("http_client_errors_total", "Responses with a 4xx status", "counter", traceMetrics.ClientErrors)
	metric("http_server_errors_total", "Responses with a 5xx status", "counter", traceMetrics.ServerErrors)
	metric("http_request_duration_avg_microseconds", "Mean request duration", "gauge", traceMetrics.AverageResponseTime())

	metric("records_created_total", "Records created through the API", "counter", atomic.LoadInt64(&s.appMetrics.recordsCreated))
	metric("records_updated_total", "Records updated through the API", "counter", atomic.LoadInt64(&s.appMetrics.recordsUpdated))
	metric("records_deleted_total", "Records deleted through the API", "counter", atomic.LoadInt64(&s.appMetrics.recordsDeleted))
	metric("records_imported_total", "Transactions imported from statements", "counter", atomic.LoadInt64(&s.appMetrics.importedRecords))
	metric("exports_total", "Exports served", "counter", atomic.LoadInt64(&s.appMetrics.exports))

	if s.dashboards != nil {
		stats := s.dashboards.Cache().Stats()
		metric("dashboard_cache_hits_total", "Dashboard cache hits", "counter", stats.Hits)
		metric("dashboard_cache_misses_total", "Dashboard cache misses", "counter", stats.Misses)
		metric("dashboard_cache_entries", "Cached dashboards", "gauge", stats.Size)
	}

	metric("rate_limit_hits_total", "Total rate limit hits", "counter", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "Total suspicious requests detected", "counter", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "Application uptime in seconds", "gauge", int64(time.Since(s.appMetrics.uptime).Seconds()))
}
