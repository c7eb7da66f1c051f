package http

import (
	"encoding/json"
	"net/http"

	applog "rewards/internal/log"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Failed writing response", applog.FieldError, err)
	}
}
