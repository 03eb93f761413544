package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewHealthHandler returns the GET /health handler. Redis being down degrades
// the report but not the status: the cache tier is optional by design.
func NewHealthHandler(db *sql.DB, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		overall := "ok"
		dbState := "ok"
		if err := db.PingContext(ctx); err != nil {
			dbState = "down"
			overall = "degraded"
			status = http.StatusServiceUnavailable
		}
		cacheState := "ok"
		if err := redisClient.Ping(ctx).Err(); err != nil {
			cacheState = "down"
		}

		writeJSON(w, status, map[string]string{
			"status": overall,
			"db":     dbState,
			"cache":  cacheState,
		})
	}
}
