package repository

import (
	"context"
	"database/sql"
	"errors"

	"chargemap/internal/models"
)

// ErrMissingStation is returned when a charger upsert arrives without its
// parent station's primary key. Callers must materialize the station first.
var ErrMissingStation = errors.New("repository: charger upsert requires station id")

// ChargerRepository persists per-charger dynamic status.
type ChargerRepository struct {
	db *sql.DB
}

// NewChargerRepository returns repository.
func NewChargerRepository(db *sql.DB) *ChargerRepository {
	return &ChargerRepository{db: db}
}

// FindByStationExternalID returns all chargers of a station, stable-ordered
// by charger external id.
func (r *ChargerRepository) FindByStationExternalID(ctx context.Context, stationExternalID string) ([]models.Charger, error) {
	const query = `
		SELECT c.id, c.external_id, c.station_id, c.name, c.type_code, c.status_code,
		       c.provider_status_raw, c.provider_status_time, c.server_status_time
		FROM chargers c
		JOIN stations s ON s.id = c.station_id
		WHERE s.external_id = $1
		ORDER BY c.external_id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, stationExternalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chargers []models.Charger
	for rows.Next() {
		var (
			c            models.Charger
			providerTime sql.NullTime
		)
		if err := rows.Scan(
			&c.ID,
			&c.ExternalID,
			&c.StationID,
			&c.Name,
			&c.TypeCode,
			&c.StatusCode,
			&c.ProviderStatusRaw,
			&providerTime,
			&c.ServerStatusTime,
		); err != nil {
			return nil, err
		}
		if providerTime.Valid {
			t := providerTime.Time
			c.ProviderStatusTime = &t
		}
		chargers = append(chargers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return chargers, nil
}

// Upsert writes a charger keyed on external_id. The station foreign key is
// mandatory; server_status_time carries the caller's fetch instant.
func (r *ChargerRepository) Upsert(ctx context.Context, charger *models.Charger) error {
	if charger.StationID == 0 {
		return ErrMissingStation
	}
	const query = `
		INSERT INTO chargers (external_id, station_id, name, type_code, status_code,
		                      provider_status_raw, provider_status_time, server_status_time, raw_snapshot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (external_id) DO UPDATE SET
			station_id = EXCLUDED.station_id,
			name = EXCLUDED.name,
			type_code = EXCLUDED.type_code,
			status_code = EXCLUDED.status_code,
			provider_status_raw = EXCLUDED.provider_status_raw,
			provider_status_time = EXCLUDED.provider_status_time,
			server_status_time = EXCLUDED.server_status_time,
			raw_snapshot = EXCLUDED.raw_snapshot
		RETURNING id
	`
	var providerTime sql.NullTime
	if charger.ProviderStatusTime != nil {
		providerTime = sql.NullTime{Time: *charger.ProviderStatusTime, Valid: true}
	}
	return r.db.QueryRowContext(ctx, query,
		charger.ExternalID,
		charger.StationID,
		charger.Name,
		charger.TypeCode,
		charger.StatusCode,
		charger.ProviderStatusRaw,
		providerTime,
		charger.ServerStatusTime,
		charger.RawSnapshot,
	).Scan(&charger.ID)
}
