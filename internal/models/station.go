package models

import (
	"encoding/json"
	"time"
)

// Station is a charging installation as stored in Postgres. Lat/Lon are
// extracted from the PostGIS geography column when reading.
type Station struct {
	ID                int64           `db:"id" json:"-"`
	ExternalID        string          `db:"external_id" json:"external_id"`
	Name              string          `db:"name" json:"name"`
	Address           string          `db:"address" json:"address"`
	Lat               float64         `db:"lat" json:"lat"`
	Lon               float64         `db:"lon" json:"lon"`
	StaticRefreshedAt time.Time       `db:"static_refreshed_at" json:"static_refreshed_at"`
	RawSnapshot       json.RawMessage `db:"raw_snapshot" json:"-"`
}

// StationWithDistance is a spatial query row: a station plus its server-side
// computed distance from the query point and the number of chargers on record.
type StationWithDistance struct {
	Station
	DistanceM    float64 `db:"distance_m" json:"distance_m"`
	ChargerCount int     `db:"charger_count" json:"charger_count"`
}
