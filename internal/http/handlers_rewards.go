package http

import (
	"net/http"
	"strconv"

	applog "rewards/internal/log"
)

// handleCustomerRewards serves GET /api/rewards/{customerId}.
func (s *Server) handleCustomerRewards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customerID, err := parseCustomerID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	dateRange, err := parseDateRange(r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	key := cacheKey(strconv.FormatInt(customerID, 10), dateRange)
	if summary, ok := s.summaryCache.Get(key); ok {
		s.events.LogRewardsComputed(ctx, summary, dateRange, true)
		writeJSON(w, r, http.StatusOK, NewCustomerRewardResponse(summary))
		return
	}

	summary, err := s.rewards.CustomerRewards(ctx, customerID, dateRange)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.appMetrics.summariesComputed.Add(1)
	s.summaryCache.Set(key, summary)
	s.events.LogRewardsComputed(ctx, summary, dateRange, false)

	writeJSON(w, r, http.StatusOK, NewCustomerRewardResponse(summary))
}

// handleAllRewards serves GET /api/rewards. A single customer without
// transactions in the window fails the whole request with 404.
func (s *Server) handleAllRewards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dateRange, err := parseDateRange(r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	key := cacheKey("*", dateRange)
	summaries, ok := s.batchCache.Get(key)
	if !ok {
		summaries, err = s.rewards.AllCustomerRewards(ctx, dateRange)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.appMetrics.batchesComputed.Add(1)
		s.appMetrics.summariesComputed.Add(int64(len(summaries)))
		s.batchCache.Set(key, summaries)
	}

	s.logger.DebugContext(ctx, "Batch rewards served", applog.FieldCustomers, len(summaries), applog.FieldCacheHit, ok)
	writeJSON(w, r, http.StatusOK, NewCustomerRewardResponses(summaries))
}
