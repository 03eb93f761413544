package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"chargemap/internal/geo"
	"chargemap/internal/models"
	"chargemap/internal/service"
	"chargemap/internal/upstream"
)

const (
	minSearchRadiusM = 100
	maxSearchRadiusM = 15000

	defaultPageLimit = 50
	maxPageLimit     = 100
)

// NewSearchHandler returns the GET /stations/nearby handler. Coordinates and
// radius arrive as query strings and are validated at this edge; the resolver
// works with a single numeric representation.
func NewSearchHandler(resolver *service.Resolver, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		lat, err := geo.ParseCoordinate(q.Get("lat"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid lat")
			return
		}
		lon, err := geo.ParseCoordinate(q.Get("lon"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid lon")
			return
		}
		radius, err := strconv.ParseFloat(q.Get("radius_m"), 64)
		if err != nil || radius < minSearchRadiusM || radius > maxSearchRadiusM {
			writeError(w, http.StatusBadRequest, "radius_m must be between 100 and 15000")
			return
		}

		resp, err := resolver.SearchNearby(r.Context(), service.SearchRequest{
			Lat:     lat,
			Lon:     lon,
			RadiusM: radius,
		})
		if err != nil {
			switch {
			case errors.Is(err, geo.ErrInvalidCoordinate), errors.Is(err, geo.ErrInvalidRadius):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, upstream.ErrUnavailable), errors.Is(err, upstream.ErrMalformed):
				writeError(w, http.StatusBadGateway, "upstream provider unavailable")
			default:
				logger.Error("search failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "search failed")
			}
			return
		}

		page, limit := pagination(q.Get("page"), q.Get("limit"))
		total := len(resp.Stations)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"source":   resp.Source,
			"total":    total,
			"page":     page,
			"limit":    limit,
			"stations": paginate(resp.Stations, page, limit),
		})
	}
}

func pagination(pageRaw, limitRaw string) (int, int) {
	page, err := strconv.Atoi(pageRaw)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(limitRaw)
	if err != nil || limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func paginate(stations []models.SearchStation, page, limit int) []models.SearchStation {
	start := (page - 1) * limit
	if start >= len(stations) {
		return []models.SearchStation{}
	}
	end := start + limit
	if end > len(stations) {
		end = len(stations)
	}
	return stations[start:end]
}
