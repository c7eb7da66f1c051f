package http

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	})
}

// handleReady checks that the transaction source answers within readinessTimeout.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	switch {
	case s.readiness == nil:
		checks["source"] = "not_configured"
	default:
		if err := s.readiness.Ping(ctx); err != nil {
			checks["source"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["source"] = "ok"
		}
	}

	checks["cache"] = map[string]any{
		"summary_entries": s.summaryCache.Size(),
		"batch_entries":   s.batchCache.Size(),
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.GetMetrics().ClientCount,
	}

	writeJSON(w, r, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text exposition format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.traceMiddleware.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.securityDetector.GetMetrics()
	summaryStats := s.summaryCache.Stats()
	batchStats := s.batchCache.Stats()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	labelled := func(name, kind, help string, values map[string]int64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
		for _, cacheName := range []string{"summary", "batch"} {
			fmt.Fprintf(w, "%s{cache=%q} %d\n", name, cacheName, values[cacheName])
		}
		fmt.Fprintln(w)
	}

	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "counter", "HTTP responses with a 5xx status", traceMetrics.ServerErrors)
	metric("http_request_duration_avg_microseconds", "gauge", "Average request duration", traceMetrics.AverageResponseTime)
	metric("reward_summaries_computed_total", "counter", "Customer summaries computed from the transaction source", s.appMetrics.summariesComputed.Load())
	metric("reward_batches_computed_total", "counter", "All-customer batches computed from the transaction source", s.appMetrics.batchesComputed.Load())
	labelled("cache_hits_total", "counter", "Total cache hits", map[string]int64{"summary": summaryStats.Hits, "batch": batchStats.Hits})
	labelled("cache_misses_total", "counter", "Total cache misses", map[string]int64{"summary": summaryStats.Misses, "batch": batchStats.Misses})
	labelled("cache_entries", "gauge", "Current cache entries", map[string]int64{"summary": int64(summaryStats.Size), "batch": int64(batchStats.Size)})
	metric("rate_limit_rejected_total", "counter", "Requests rejected by the rate limiter", rateLimitMetrics.Rejected)
	metric("rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "counter", "Requests matching a probing pattern", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", int64(time.Since(s.appMetrics.uptime).Seconds()))
}
