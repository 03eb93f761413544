package service

import (
	"context"
	"encoding/json"
	"time"

	"chargemap/internal/models"
	"chargemap/internal/upstream"
)

// Cache is the short-TTL tier. Implementations report a miss (ok=false) for
// absent or unreadable entries and reserve the error for transport failures,
// which the resolver logs and bypasses.
type Cache interface {
	Get(ctx context.Context, key string) (payload json.RawMessage, writtenAt time.Time, ok bool, err error)
	SetEx(ctx context.Context, key string, payload any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// StationStore is the durable spatial tier for stations.
type StationStore interface {
	FindWithinRadius(ctx context.Context, lat, lon, radiusM float64) ([]models.StationWithDistance, error)
	FindByExternalID(ctx context.Context, externalID string) (*models.Station, *time.Time, error)
	Upsert(ctx context.Context, station *models.Station) (int64, error)
}

// ChargerStore is the durable tier for per-charger dynamic status.
type ChargerStore interface {
	FindByStationExternalID(ctx context.Context, stationExternalID string) ([]models.Charger, error)
	Upsert(ctx context.Context, charger *models.Charger) error
}

// Provider is the authoritative but rate-limited upstream feed.
type Provider interface {
	FetchByRegion(ctx context.Context, region string) ([]upstream.Item, error)
}

// Geocoder maps a coordinate to the coarse region string the provider
// filters on. It is unreliable; the resolver substitutes a fallback on error
// and never retries.
type Geocoder interface {
	ResolveRegion(ctx context.Context, lat, lon float64) (string, error)
}
