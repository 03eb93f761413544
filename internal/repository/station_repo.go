package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"chargemap/internal/models"
)

// StationRepository persists stations with their PostGIS point geometry.
type StationRepository struct {
	db *sql.DB
}

// NewStationRepository returns repository.
func NewStationRepository(db *sql.DB) *StationRepository {
	return &StationRepository{db: db}
}

// FindWithinRadius returns stations whose location lies within radiusM meters
// of (lat, lon), closest first. Distance is computed server-side on the
// geography type; ties are broken by external id for deterministic output.
func (r *StationRepository) FindWithinRadius(ctx context.Context, lat, lon, radiusM float64) ([]models.StationWithDistance, error) {
	const query = `
		SELECT s.id, s.external_id, s.name, s.address,
		       ST_Y(s.location::geometry) AS lat,
		       ST_X(s.location::geometry) AS lon,
		       s.static_refreshed_at,
		       ST_Distance(s.location, ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography) AS distance_m,
		       (SELECT COUNT(*) FROM chargers c WHERE c.station_id = s.id) AS charger_count
		FROM stations s
		WHERE s.location IS NOT NULL
		  AND ST_DWithin(s.location, ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography, $3)
		ORDER BY distance_m ASC, s.external_id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, lat, lon, radiusM)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []models.StationWithDistance
	for rows.Next() {
		var s models.StationWithDistance
		if err := rows.Scan(
			&s.ID,
			&s.ExternalID,
			&s.Name,
			&s.Address,
			&s.Lat,
			&s.Lon,
			&s.StaticRefreshedAt,
			&s.DistanceM,
			&s.ChargerCount,
		); err != nil {
			return nil, err
		}
		stations = append(stations, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stations, nil
}

// FindByExternalID loads one station plus the oldest server status time
// across its chargers (nil when the station has no chargers). The oldest
// time drives freshness: one stale charger makes the whole station stale.
// A missing station returns (nil, nil, nil).
func (r *StationRepository) FindByExternalID(ctx context.Context, externalID string) (*models.Station, *time.Time, error) {
	const query = `
		SELECT s.id, s.external_id, s.name, s.address,
		       ST_Y(s.location::geometry) AS lat,
		       ST_X(s.location::geometry) AS lon,
		       s.static_refreshed_at, s.raw_snapshot,
		       MIN(c.server_status_time) AS oldest_server_status_time
		FROM stations s
		LEFT JOIN chargers c ON c.station_id = s.id
		WHERE s.external_id = $1
		GROUP BY s.id
	`
	var (
		s          models.Station
		oldestTime sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, externalID).Scan(
		&s.ID,
		&s.ExternalID,
		&s.Name,
		&s.Address,
		&s.Lat,
		&s.Lon,
		&s.StaticRefreshedAt,
		&s.RawSnapshot,
		&oldestTime,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	if !oldestTime.Valid {
		return &s, nil, nil
	}
	t := oldestTime.Time
	return &s, &t, nil
}

// Upsert writes a station keyed on external_id and returns its primary key.
// static_refreshed_at is stamped with the database clock on every write.
func (r *StationRepository) Upsert(ctx context.Context, station *models.Station) (int64, error) {
	const query = `
		INSERT INTO stations (external_id, name, address, location, static_refreshed_at, raw_snapshot)
		VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($5, $4), 4326)::geography, NOW(), $6)
		ON CONFLICT (external_id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			location = EXCLUDED.location,
			static_refreshed_at = NOW(),
			raw_snapshot = EXCLUDED.raw_snapshot
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		station.ExternalID,
		station.Name,
		station.Address,
		station.Lat,
		station.Lon,
		station.RawSnapshot,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	station.ID = id
	return id, nil
}
