package httpserver

import (
	"net/http"

	"go.uber.org/zap"
)

// Routes groups handlers.
type Routes struct {
	SearchNearby    http.HandlerFunc
	StationDetail   http.HandlerFunc
	InvalidateCache http.HandlerFunc
	Health          http.HandlerFunc
}

// NewRouter registers endpoints and wraps them with the middleware chain.
func NewRouter(routes Routes, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	if routes.SearchNearby != nil {
		mux.Handle("/stations/nearby", method(http.MethodGet, routes.SearchNearby))
	}
	if routes.StationDetail != nil {
		mux.Handle("/stations/detail", method(http.MethodGet, routes.StationDetail))
	}
	if routes.InvalidateCache != nil {
		mux.Handle("/internal/cache/detail", method(http.MethodDelete, routes.InvalidateCache))
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	return Chain(mux, RequestID, Logging(logger), Recovery(logger))
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
