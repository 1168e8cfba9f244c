package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/weatherify/internal/observability"
)

// RouterConfig holds per-route middleware settings.
type RouterConfig struct {
	Limiter        *rate.Limiter
	RequestTimeout time.Duration
}

// NewRouter wires handler routes. /health and /metrics skip rate limiting so
// probes keep working under load.
func NewRouter(h *Handler, logger *zap.Logger, rc RouterConfig) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)

	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)

	api := router.NewRoute().Subrouter()
	api.Use(RateLimitMiddleware(rc.Limiter))
	if rc.RequestTimeout > 0 {
		api.Use(TimeoutMiddleware(rc.RequestTimeout))
	}
	api.HandleFunc("/panels", h.GetPanels).Methods(http.MethodGet)
	api.HandleFunc("/panels/{name}", h.GetPanel).Methods(http.MethodGet)
	api.HandleFunc("/search", h.GetSearch).Methods(http.MethodGet)
	api.HandleFunc("/search/input", h.PutSearchInput).Methods(http.MethodPut)
	api.HandleFunc("/search/select", h.PostSearchSelect).Methods(http.MethodPost)
	api.HandleFunc("/classify/temperature/{celsius}", h.GetClassifyTemperature).Methods(http.MethodGet)
	api.HandleFunc("/classify/code/{code}", h.GetClassifyCode).Methods(http.MethodGet)

	return router
}
