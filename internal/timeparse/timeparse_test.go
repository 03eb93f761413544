package timeparse

import (
	"testing"
	"time"
)

func TestParseFormats(t *testing.T) {
	want := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	cases := []struct {
		name string
		raw  string
	}{
		{"iso with Z", "2025-03-14T09:26:53Z"},
		{"iso with offset", "2025-03-14T18:26:53+09:00"},
		{"iso naive assumed utc", "2025-03-14T09:26:53"},
		{"space separated", "2025-03-14 09:26:53"},
		{"compact", "20250314092653"},
		{"padded", "  2025-03-14T09:26:53Z  "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Parse(tc.raw)
			if !ok {
				t.Fatalf("Parse(%q) failed", tc.raw)
			}
			if !got.Equal(want) {
				t.Errorf("Parse(%q) = %v, want %v", tc.raw, got, want)
			}
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "not a time", "2025-13-99", "12345"} {
		if _, ok := Parse(raw); ok {
			t.Errorf("Parse(%q) unexpectedly succeeded", raw)
		}
	}
}

// A freshness verdict must survive serialization: parsing any recognized
// provider format, rendering it as RFC3339 (the cache wire form) and parsing
// again must land on the same instant.
func TestParseRoundTripsThroughCacheForm(t *testing.T) {
	for _, raw := range []string{
		"2025-03-14T09:26:53Z",
		"2025-03-14T18:26:53+09:00",
		"2025-03-14T09:26:53",
		"20250314092653",
	} {
		first, ok := Parse(raw)
		if !ok {
			t.Fatalf("Parse(%q) failed", raw)
		}
		second, ok := Parse(first.Format(time.RFC3339))
		if !ok {
			t.Fatalf("re-parse of %q failed", raw)
		}
		if !first.Equal(second) {
			t.Errorf("%q: round trip drifted from %v to %v", raw, first, second)
		}
	}
}
