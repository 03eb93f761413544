// Package timeparse parses the provider's inconsistent timestamp renderings.
// The same tolerance is applied when reading timestamps back out of the cache,
// so a freshness verdict survives a round trip through serialization.
package timeparse

import (
	"strings"
	"time"
)

// Layouts tried in order: ISO-8601 with offset or Z, ISO-8601 naive (assumed
// UTC), a space-separated variant some feeds emit, then the compact
// YYYYMMDDHHMMSS form.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"20060102150405",
}

// Parse attempts to interpret raw as a timestamp. It returns the parsed
// instant in UTC and true, or the zero time and false when no layout matches.
// Callers keep the raw string for audit regardless of the outcome.
func Parse(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		return t.UTC(), true
	}
	return time.Time{}, false
}
