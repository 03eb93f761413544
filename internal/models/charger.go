package models

import (
	"encoding/json"
	"time"
)

// Charger is a physical charging unit belonging to a station.
//
// ServerStatusTime is the wall clock of this server at the moment the status
// was fetched from the provider; it is the only timestamp freshness decisions
// look at. ProviderStatusTime is whatever the provider reported, parsed
// best-effort, and is kept for auditing only.
type Charger struct {
	ID                 int64           `db:"id" json:"-"`
	ExternalID         string          `db:"external_id" json:"external_id"`
	StationID          int64           `db:"station_id" json:"-"`
	Name               string          `db:"name" json:"name"`
	TypeCode           string          `db:"type_code" json:"type_code"`
	StatusCode         string          `db:"status_code" json:"status_code"`
	ProviderStatusRaw  string          `db:"provider_status_raw" json:"provider_status_raw,omitempty"`
	ProviderStatusTime *time.Time      `db:"provider_status_time" json:"provider_status_time,omitempty"`
	ServerStatusTime   time.Time       `db:"server_status_time" json:"server_status_time"`
	RawSnapshot        json.RawMessage `db:"raw_snapshot" json:"-"`
}
