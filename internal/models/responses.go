package models

import "time"

// Source identifies which tier satisfied a request.
const (
	SourceCache         = "cache"
	SourceDatabase      = "database"
	SourceDatabaseStale = "database_stale"
	SourceUpstream      = "upstream"
)

// SearchStation is one row of a nearby-search response. Search is
// station-level only: it never carries per-charger status.
type SearchStation struct {
	ExternalID   string  `json:"external_id"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	DistanceM    float64 `json:"distance_m"`
	ChargerCount int     `json:"charger_count"`
}

// SearchResponse is the resolver's answer to a nearby search.
type SearchResponse struct {
	Source   string          `json:"source"`
	Stations []SearchStation `json:"stations"`
}

// ChargerView is a charger as presented to clients, with decoded labels
// alongside the provider's raw codes.
type ChargerView struct {
	ExternalID         string     `json:"external_id"`
	Name               string     `json:"name"`
	TypeCode           string     `json:"type_code"`
	TypeLabel          string     `json:"type_label"`
	StatusCode         string     `json:"status_code"`
	Status             string     `json:"status"`
	ProviderStatusTime *time.Time `json:"provider_status_time,omitempty"`
	ServerStatusTime   time.Time  `json:"server_status_time"`
}

// DetailResponse is the resolver's answer to a station detail request.
type DetailResponse struct {
	Source     string        `json:"source"`
	ExternalID string        `json:"external_id"`
	Name       string        `json:"name"`
	Address    string        `json:"address"`
	Lat        float64       `json:"lat"`
	Lon        float64       `json:"lon"`
	Chargers   []ChargerView `json:"chargers"`
}
