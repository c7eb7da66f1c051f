package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"rewards/internal/core"
)

const (
	paramCustomerID = "customerId"
	paramStartDate  = "startDate"
	paramEndDate    = "endDate"
)

// parseCustomerID reads the {customerId} path segment.
func parseCustomerID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, paramCustomerID))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, newBadRequest("Invalid customerId '%s': must be an integer", raw)
	}
	return id, nil
}

// parseDateRange returns the requested window, or nil when startDate and
// endDate are not both given. A lone bound is ignored.
func parseDateRange(query url.Values) (*core.DateRange, error) {
	startRaw := strings.TrimSpace(query.Get(paramStartDate))
	endRaw := strings.TrimSpace(query.Get(paramEndDate))
	if startRaw == "" || endRaw == "" {
		return nil, nil
	}

	start, err := core.ParseDate(startRaw)
	if err != nil {
		return nil, newBadRequest("Invalid %s '%s': expected format YYYY-MM-DD", paramStartDate, startRaw)
	}
	end, err := core.ParseDate(endRaw)
	if err != nil {
		return nil, newBadRequest("Invalid %s '%s': expected format YYYY-MM-DD", paramEndDate, endRaw)
	}
	return core.NewDateRange(start, end)
}

// cacheKey identifies a summary request; "*" stands for every customer.
func cacheKey(customer string, r *core.DateRange) string {
	if r == nil {
		return customer
	}
	return customer + "|" + r.Start.String() + "|" + r.End.String()
}
