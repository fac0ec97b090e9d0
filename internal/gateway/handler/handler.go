package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"sdkchurn/internal/gateway/middleware"
	churnrepo "sdkchurn/internal/gateway/repository/churn"
)

const noSDKsMessage = "At least one SDK ID must be provided as ?id param"

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// writeError maps store errors to client-visible statuses. Anything unknown is
// a 500 and gets logged with the request id.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	if errors.Is(err, churnrepo.ErrNoSDKs) {
		http.Error(w, noSDKsMessage, http.StatusBadRequest)
		return
	}
	logger.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.RequestIDFrom(r.Context())),
		zap.Error(err),
	)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
