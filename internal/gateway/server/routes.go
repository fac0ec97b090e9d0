package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sdkchurn/internal/gateway/handler"
	"sdkchurn/internal/gateway/middleware"
)

func NewMux(
	churnHandler *handler.ChurnHandler,
	pageHandler *handler.PageHandler,
	logger *zap.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// API
	mux.HandleFunc("GET /api/sdks", churnHandler.HandleSDKs)
	mux.HandleFunc("GET /api/churn", churnHandler.HandleChurn)
	mux.HandleFunc("GET /api/apps/{from}/{to}", churnHandler.HandleApps)
	mux.HandleFunc("GET /api/matrix", churnHandler.HandleMatrix)

	// Page
	mux.HandleFunc("GET /{$}", pageHandler.HandleIndex)

	// Ops
	mux.HandleFunc("GET /health", handler.HandleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Middleware. RequestID must wrap Observe so the id and the matched
	// pattern are both visible when the access log is written.
	return middleware.RequestID(middleware.Observe(logger, middleware.CORS(mux)))
}
