package controller

import (
	"encoding/json"
	"net/http"

	"github.com/mwhitworth/ratemill/internal/domain"
)

// writeRatingAck acknowledges a successful rate/unrate: JSON for AJAX-style
// callers, a redirect for plain form posts.
func writeRatingAck(w http.ResponseWriter, r *http.Request, redirectURL string) {
	if isAJAX(r) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true}`))
		return
	}

	http.Redirect(w, r, redirectURL, http.StatusFound)
}

func writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		ctx := r.Context()
		logger := domain.LoggerFromContext(ctx)
		logger.ErrorContext(ctx, "unable to write response", "error", err)
	}
}
