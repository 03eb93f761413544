package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"chargemap/internal/service"
	"chargemap/internal/upstream"
)

// NewDetailHandler returns the GET /stations/detail handler.
func NewDetailHandler(resolver *service.Resolver, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		externalID := strings.TrimSpace(q.Get("station_id"))
		if externalID == "" {
			writeError(w, http.StatusBadRequest, "station_id is required")
			return
		}
		regionHint := strings.TrimSpace(q.Get("region"))

		resp, err := resolver.GetStationDetail(r.Context(), externalID, regionHint)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrStationNotFound):
				writeError(w, http.StatusNotFound, "station not found")
			case errors.Is(err, upstream.ErrUnavailable), errors.Is(err, upstream.ErrMalformed):
				writeError(w, http.StatusBadGateway, "upstream provider unavailable")
			default:
				logger.Error("detail failed", zap.String("station", externalID), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "detail failed")
			}
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// NewInvalidateHandler returns the DELETE /internal/cache/detail handler,
// dropping a station's cached detail entry.
func NewInvalidateHandler(resolver *service.Resolver, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		externalID := strings.TrimSpace(r.URL.Query().Get("station_id"))
		if externalID == "" {
			writeError(w, http.StatusBadRequest, "station_id is required")
			return
		}
		if err := resolver.InvalidateStation(r.Context(), externalID); err != nil {
			logger.Warn("cache invalidation failed", zap.String("station", externalID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "invalidation failed")
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	}
}
