package geo

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrInvalidCoordinate covers non-numeric, non-finite and out-of-range inputs.
	ErrInvalidCoordinate = errors.New("geo: invalid coordinate")
	// ErrInvalidRadius covers radii that are not a positive finite number.
	ErrInvalidRadius = errors.New("geo: invalid radius")
)

// SearchKey is the canonical fingerprint of a nearby search: rounded
// coordinates plus the radius bucket. Two requests with the same key are the
// same query as far as the cache and the upstream shape are concerned; the
// caller's original radius is carried separately for post-filtering.
type SearchKey struct {
	Lat    float64
	Lon    float64
	Bucket int
}

// CacheKey renders the fingerprint in the fixed keyspace form
// search:{lat}:{lon}:{bucket} with a stable number of decimals.
func (k SearchKey) CacheKey(decimals int) string {
	return fmt.Sprintf("search:%s:%s:%d",
		strconv.FormatFloat(k.Lat, 'f', decimals, 64),
		strconv.FormatFloat(k.Lon, 'f', decimals, 64),
		k.Bucket)
}

// Canonicalizer normalizes query parameters into canonical fingerprints.
// It is pure and safe for concurrent use.
type Canonicalizer struct {
	decimals int
	buckets  []int
}

// NewCanonicalizer returns a canonicalizer with the given rounding precision
// and radius buckets. Buckets are kept sorted ascending.
func NewCanonicalizer(decimals int, buckets []int) *Canonicalizer {
	sorted := append([]int(nil), buckets...)
	sort.Ints(sorted)
	return &Canonicalizer{decimals: decimals, buckets: sorted}
}

// Decimals returns the rounding precision, used for rendering cache keys.
func (c *Canonicalizer) Decimals() int { return c.decimals }

// ParseCoordinate parses a latitude or longitude delivered as a string.
// Rejects empty, non-numeric and non-finite values.
func ParseCoordinate(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidCoordinate
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidCoordinate
	}
	return v, nil
}

// NormalizeSearchKey validates (lat, lon, radius) and derives the canonical
// fingerprint: coordinates rounded to the configured precision and the radius
// mapped to the smallest bucket that covers it (or the largest bucket when the
// request exceeds them all).
func (c *Canonicalizer) NormalizeSearchKey(lat, lon, radiusM float64) (SearchKey, error) {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.Abs(lat) > 90 {
		return SearchKey{}, ErrInvalidCoordinate
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) || math.Abs(lon) > 180 {
		return SearchKey{}, ErrInvalidCoordinate
	}
	if math.IsNaN(radiusM) || math.IsInf(radiusM, 0) || radiusM <= 0 {
		return SearchKey{}, ErrInvalidRadius
	}

	return SearchKey{
		Lat:    roundTo(lat, c.decimals),
		Lon:    roundTo(lon, c.decimals),
		Bucket: c.bucket(radiusM),
	}, nil
}

func (c *Canonicalizer) bucket(radiusM float64) int {
	for _, b := range c.buckets {
		if radiusM <= float64(b) {
			return b
		}
	}
	return c.buckets[len(c.buckets)-1]
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.Round(v*scale) / scale
}
