package upstream

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"chargemap/internal/timeparse"
)

// Item is one flat provider record: station-level fields plus exactly one
// charger's fields. A station appears once per charger in the feed.
type Item struct {
	StationID   string
	StationName string
	Address     string
	Lat         float64
	Lon         float64
	HasCoords   bool

	ChargerID   string
	ChargerName string
	StatusCode  string
	ChargeTp    string
	CpTp        string

	// StatusTimeRaw is kept verbatim for audit; StatusTime is the best-effort
	// parse and is nil when no known layout matched.
	StatusTimeRaw string
	StatusTime    *time.Time

	// Raw is the original provider payload for this record.
	Raw json.RawMessage
}

// statusTimeKeys are the key names the provider has been observed to use for
// the charger status timestamp, tried in order.
var statusTimeKeys = []string{"statUpdatetime", "statUpdateTime", "statUpdDt", "lastTsdt", "updateTime"}

// UnmarshalJSON tolerates the provider's loose typing: coordinates arrive as
// strings or numbers, and the status timestamp hides under several key names.
func (it *Item) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	it.Raw = append(json.RawMessage(nil), data...)
	it.StationID = stringField(fields, "csId")
	it.StationName = stringField(fields, "csNm")
	it.Address = stringField(fields, "addr")
	it.ChargerID = stringField(fields, "cpId")
	it.ChargerName = stringField(fields, "cpNm")
	it.StatusCode = stringField(fields, "cpStat")
	it.ChargeTp = stringField(fields, "chargeTp")
	it.CpTp = stringField(fields, "cpTp")

	latRaw := stringField(fields, "lat")
	lonRaw := stringField(fields, "longi")
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(lonRaw), 64)
	if latErr == nil && lonErr == nil {
		it.Lat = lat
		it.Lon = lon
		it.HasCoords = true
	}

	for _, key := range statusTimeKeys {
		raw := stringField(fields, key)
		if raw == "" {
			continue
		}
		it.StatusTimeRaw = raw
		if parsed, ok := timeparse.Parse(raw); ok {
			it.StatusTime = &parsed
		}
		break
	}

	return nil
}

// stringField renders the value under key as a string whether the provider
// sent a JSON string or a bare number.
func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
