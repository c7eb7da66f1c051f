package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"rewards/internal/core"
	applog "rewards/internal/log"
)

// errorResponse is the JSON body of every non-2xx API response.
type errorResponse struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
}

// badRequestError marks a malformed path or query parameter.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func newBadRequest(format string, args ...any) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

// statusFor maps an error to its HTTP status and client-facing message.
func statusFor(err error) (int, string) {
	var badReq *badRequestError
	switch {
	case errors.Is(err, core.ErrCustomerNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, core.ErrInvalidDateRange):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &badReq):
		return http.StatusBadRequest, badReq.msg
	default:
		return http.StatusInternalServerError, "An unexpected error occurred: " + err.Error()
	}
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		s.events.LogError(r.Context(), "Reward computation failed", err, applog.ComponentRewards, applog.OpRead,
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, ""))
	}
	writeError(w, r, status, message)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, errorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
	})
}
