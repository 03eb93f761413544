// Package service implements the three-tier freshness-aware resolver. A read
// is satisfied by the cache, the spatial store, or the upstream provider, in
// that order; static geography may be arbitrarily old but per-charger status
// is refreshed once it exceeds the freshness horizon.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"chargemap/internal/codes"
	"chargemap/internal/geo"
	"chargemap/internal/models"
	"chargemap/internal/upstream"
)

// ErrStationNotFound is returned when neither store nor upstream knows the station.
var ErrStationNotFound = errors.New("service: station not found")

// Options carries the resolver's tunables.
type Options struct {
	FreshnessHorizon time.Duration
	SearchTTL        time.Duration
	DetailTTL        time.Duration
	RegionFallback   string
}

// SearchRequest is a validated nearby query. RadiusM is the caller's original
// radius; bucketing happens inside the resolver.
type SearchRequest struct {
	Lat     float64
	Lon     float64
	RadiusM float64
}

// Resolver orchestrates the cache, store and upstream tiers.
type Resolver struct {
	canon    *geo.Canonicalizer
	cache    Cache
	stations StationStore
	chargers ChargerStore
	provider Provider
	geocoder Geocoder
	opts     Options
	logger   *zap.Logger

	// flight collapses concurrent upstream fetches for the same region.
	// Correctness does not depend on it: upserts are idempotent.
	flight singleflight.Group

	now func() time.Time
}

// NewResolver wires the resolver's collaborators.
func NewResolver(
	canon *geo.Canonicalizer,
	cache Cache,
	stations StationStore,
	chargers ChargerStore,
	provider Provider,
	geocoder Geocoder,
	opts Options,
	logger *zap.Logger,
) *Resolver {
	return &Resolver{
		canon:    canon,
		cache:    cache,
		stations: stations,
		chargers: chargers,
		provider: provider,
		geocoder: geocoder,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// SearchNearby answers "what stations are near (lat, lon)?". Search is
// station-level: it never consults charger freshness.
func (r *Resolver) SearchNearby(ctx context.Context, req SearchRequest) (*models.SearchResponse, error) {
	key, err := r.canon.NormalizeSearchKey(req.Lat, req.Lon, req.RadiusM)
	if err != nil {
		return nil, err
	}
	cacheKey := key.CacheKey(r.canon.Decimals())

	if cached, ok := r.cachedSearch(ctx, cacheKey); ok {
		return &models.SearchResponse{
			Source:   models.SourceCache,
			Stations: filterByRadius(cached, req.RadiusM),
		}, nil
	}

	rows, err := r.stations.FindWithinRadius(ctx, req.Lat, req.Lon, float64(key.Bucket))
	if err != nil {
		r.logger.Warn("store spatial query failed, falling through to upstream",
			zap.String("key", cacheKey), zap.Error(err))
		rows = nil
	}
	if len(rows) > 0 {
		stations := make([]models.SearchStation, 0, len(rows))
		for _, row := range rows {
			stations = append(stations, models.SearchStation{
				ExternalID:   row.ExternalID,
				Name:         row.Name,
				Address:      row.Address,
				Lat:          row.Lat,
				Lon:          row.Lon,
				DistanceM:    row.DistanceM,
				ChargerCount: row.ChargerCount,
			})
		}
		stations = dedupeStations(filterByRadius(stations, req.RadiusM))
		sortStations(stations)
		r.writeCache(ctx, cacheKey, stations, r.opts.SearchTTL, len(stations) > 0)
		return &models.SearchResponse{Source: models.SourceDatabase, Stations: stations}, nil
	}

	fetched, err := r.searchFromUpstream(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("search upstream: %w", err)
	}
	stations := dedupeStations(filterByRadius(fetched, req.RadiusM))
	sortStations(stations)
	r.writeCache(ctx, cacheKey, stations, r.opts.SearchTTL, len(stations) > 0)
	return &models.SearchResponse{Source: models.SourceUpstream, Stations: stations}, nil
}

// GetStationDetail answers "what is the live state of this station?". The
// cache TTL equals the freshness horizon, so a cache hit implies fresh chargers.
func (r *Resolver) GetStationDetail(ctx context.Context, externalID, regionHint string) (*models.DetailResponse, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, ErrStationNotFound
	}
	cacheKey := detailCacheKey(externalID)
	now := r.now().UTC()

	if payload, writtenAt, ok := r.cachedPayload(ctx, cacheKey); ok && now.Sub(writtenAt) <= r.opts.DetailTTL {
		var resp models.DetailResponse
		if err := json.Unmarshal(payload, &resp); err == nil {
			resp.Source = models.SourceCache
			return &resp, nil
		}
	}

	station, oldestStatusTime, err := r.stations.FindByExternalID(ctx, externalID)
	if err != nil {
		r.logger.Warn("store station lookup failed", zap.String("station", externalID), zap.Error(err))
		station = nil
	}
	var stored []models.Charger
	if station != nil {
		stored, err = r.chargers.FindByStationExternalID(ctx, externalID)
		if err != nil {
			r.logger.Warn("store charger lookup failed", zap.String("station", externalID), zap.Error(err))
			stored = nil
		}
	}

	// Freshness is judged on the oldest charger: one stale charger makes the
	// whole station stale, so a partially refreshed batch still triggers a fetch.
	if station != nil && len(stored) > 0 && oldestStatusTime != nil && now.Sub(*oldestStatusTime) <= r.opts.FreshnessHorizon {
		resp := composeDetailFromStore(station, stored, models.SourceDatabase)
		r.writeCache(ctx, cacheKey, resp, r.opts.DetailTTL, true)
		return resp, nil
	}

	region := r.resolveRegion(ctx, regionHint, station)
	items, err := r.fetchRegion(ctx, region)
	if err != nil {
		// Any stored row degrades instead of failing, a station with zero
		// charger rows included.
		if station != nil {
			r.logger.Warn("upstream failed, serving stale store rows",
				zap.String("station", externalID), zap.Error(err))
			return composeDetailFromStore(station, stored, models.SourceDatabaseStale), nil
		}
		return nil, fmt.Errorf("detail upstream: %w", err)
	}

	group := matchStation(items, externalID)
	if group == nil {
		if station != nil {
			// Upstream is reachable but no longer reports this station; the
			// store rows are the best answer we have.
			return composeDetailFromStore(station, stored, models.SourceDatabaseStale), nil
		}
		return nil, ErrStationNotFound
	}

	chargers := r.upsertGroup(context.WithoutCancel(ctx), group, now)
	resp := composeDetailFromGroup(group, chargers, models.SourceUpstream)
	r.writeCache(ctx, cacheKey, resp, r.opts.DetailTTL, true)
	return resp, nil
}

// InvalidateStation drops the cached detail entry for a station.
func (r *Resolver) InvalidateStation(ctx context.Context, externalID string) error {
	return r.cache.Delete(ctx, detailCacheKey(externalID))
}

func detailCacheKey(externalID string) string {
	return "detail:" + externalID
}

// searchFromUpstream geocodes the query point, fetches the region's records,
// upserts them (best effort, detached from request cancellation) and returns
// every fetched station with its distance from the rounded query point. The
// caller applies the radius post-filter: upserts are about warming the store,
// response shaping is about the requested radius.
func (r *Resolver) searchFromUpstream(ctx context.Context, key geo.SearchKey) ([]models.SearchStation, error) {
	region := r.resolveRegionByCoords(ctx, key.Lat, key.Lon)
	items, err := r.fetchRegion(ctx, region)
	if err != nil {
		return nil, err
	}

	groups := groupByStation(items)
	now := r.now().UTC()
	upsertCtx := context.WithoutCancel(ctx)
	stations := make([]models.SearchStation, 0, len(groups))
	for _, g := range groups {
		r.upsertGroup(upsertCtx, g, now)
		stations = append(stations, models.SearchStation{
			ExternalID:   g.head.StationID,
			Name:         g.head.StationName,
			Address:      g.head.Address,
			Lat:          g.head.Lat,
			Lon:          g.head.Lon,
			DistanceM:    geo.Haversine(key.Lat, key.Lon, g.head.Lat, g.head.Lon),
			ChargerCount: len(g.chargers),
		})
	}
	return stations, nil
}

// fetchRegion collapses concurrent fetches per region through singleflight.
func (r *Resolver) fetchRegion(ctx context.Context, region string) ([]upstream.Item, error) {
	v, err, _ := r.flight.Do("region:"+region, func() (interface{}, error) {
		// Detached from the first caller's cancellation so co-flighted
		// requests are not failed by it; the client timeout bounds the fetch.
		return r.provider.FetchByRegion(context.WithoutCancel(ctx), region)
	})
	if err != nil {
		return nil, err
	}
	return v.([]upstream.Item), nil
}

// resolveRegionByCoords reverse-geocodes the query point, substituting the
// configured fallback region on any failure. The geocoder is never retried.
func (r *Resolver) resolveRegionByCoords(ctx context.Context, lat, lon float64) string {
	region, err := r.geocoder.ResolveRegion(ctx, lat, lon)
	if err != nil || strings.TrimSpace(region) == "" {
		r.logger.Warn("geocoder unavailable, using fallback region",
			zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Error(err))
		return r.opts.RegionFallback
	}
	return region
}

func (r *Resolver) resolveRegion(ctx context.Context, hint string, station *models.Station) string {
	if strings.TrimSpace(hint) != "" {
		return hint
	}
	if station != nil {
		return r.resolveRegionByCoords(ctx, station.Lat, station.Lon)
	}
	return r.opts.RegionFallback
}

// cachedSearch reads and decodes a search cache entry. Any failure is a miss.
func (r *Resolver) cachedSearch(ctx context.Context, key string) ([]models.SearchStation, bool) {
	payload, _, ok := r.cachedPayload(ctx, key)
	if !ok {
		return nil, false
	}
	var stations []models.SearchStation
	if err := json.Unmarshal(payload, &stations); err != nil {
		return nil, false
	}
	return stations, true
}

func (r *Resolver) cachedPayload(ctx context.Context, key string) (json.RawMessage, time.Time, bool) {
	payload, writtenAt, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return nil, time.Time{}, false
	}
	return payload, writtenAt, ok
}

// writeCache stores a response when nonEmpty holds. Empty results are never
// cached so an upstream outage cannot pin "nothing here" answers. Cache
// failures are logged and bypassed.
func (r *Resolver) writeCache(ctx context.Context, key string, payload any, ttl time.Duration, nonEmpty bool) {
	if !nonEmpty {
		return
	}
	if err := r.cache.SetEx(ctx, key, payload, ttl); err != nil {
		r.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// stationGroup collects one station's items: head carries the first-seen
// scalar fields, chargers is the union of its charger records by external id.
type stationGroup struct {
	head     upstream.Item
	chargers []upstream.Item
}

// groupByStation folds the provider's flat feed (one row per charger) into
// per-station groups, preserving feed order. Rows without a station id or
// parseable coordinates are dropped.
func groupByStation(items []upstream.Item) []*stationGroup {
	byID := make(map[string]*stationGroup)
	seenCharger := make(map[string]struct{})
	var ordered []*stationGroup
	for _, it := range items {
		if it.StationID == "" || !it.HasCoords {
			continue
		}
		g, ok := byID[it.StationID]
		if !ok {
			g = &stationGroup{head: it}
			byID[it.StationID] = g
			ordered = append(ordered, g)
		}
		if it.ChargerID == "" {
			continue
		}
		if _, dup := seenCharger[it.StationID+"\x00"+it.ChargerID]; dup {
			continue
		}
		seenCharger[it.StationID+"\x00"+it.ChargerID] = struct{}{}
		g.chargers = append(g.chargers, it)
	}
	return ordered
}

// matchStation finds the group for one station id within a region feed.
func matchStation(items []upstream.Item, externalID string) *stationGroup {
	for _, g := range groupByStation(items) {
		if g.head.StationID == externalID {
			return g
		}
	}
	return nil
}

// upsertGroup materializes the station row, then its chargers, stamping
// server_status_time with the fetch instant. A failed write is logged and
// skipped; it never aborts the batch or the request. The returned chargers
// are the in-memory rows regardless of write outcome.
func (r *Resolver) upsertGroup(ctx context.Context, g *stationGroup, fetchedAt time.Time) []models.Charger {
	station := &models.Station{
		ExternalID:  g.head.StationID,
		Name:        g.head.StationName,
		Address:     g.head.Address,
		Lat:         g.head.Lat,
		Lon:         g.head.Lon,
		RawSnapshot: g.head.Raw,
	}
	stationPK, err := r.stations.Upsert(ctx, station)
	if err != nil {
		r.logger.Warn("station upsert failed",
			zap.String("station", g.head.StationID), zap.Error(err))
		stationPK = 0
	}

	chargers := make([]models.Charger, 0, len(g.chargers))
	for _, it := range g.chargers {
		charger := models.Charger{
			ExternalID:         it.ChargerID,
			StationID:          stationPK,
			Name:               it.ChargerName,
			TypeCode:           codes.TypeCode(it.ChargeTp, it.CpTp),
			StatusCode:         it.StatusCode,
			ProviderStatusRaw:  it.StatusTimeRaw,
			ProviderStatusTime: it.StatusTime,
			ServerStatusTime:   fetchedAt,
			RawSnapshot:        it.Raw,
		}
		if stationPK != 0 {
			if err := r.chargers.Upsert(ctx, &charger); err != nil {
				r.logger.Warn("charger upsert failed",
					zap.String("charger", it.ChargerID), zap.Error(err))
			}
		}
		chargers = append(chargers, charger)
	}
	return chargers
}

func composeDetailFromStore(station *models.Station, chargers []models.Charger, source string) *models.DetailResponse {
	views := make([]models.ChargerView, 0, len(chargers))
	for _, c := range chargers {
		views = append(views, chargerView(c))
	}
	return &models.DetailResponse{
		Source:     source,
		ExternalID: station.ExternalID,
		Name:       station.Name,
		Address:    station.Address,
		Lat:        station.Lat,
		Lon:        station.Lon,
		Chargers:   views,
	}
}

func composeDetailFromGroup(g *stationGroup, chargers []models.Charger, source string) *models.DetailResponse {
	views := make([]models.ChargerView, 0, len(chargers))
	for _, c := range chargers {
		views = append(views, chargerView(c))
	}
	return &models.DetailResponse{
		Source:     source,
		ExternalID: g.head.StationID,
		Name:       g.head.StationName,
		Address:    g.head.Address,
		Lat:        g.head.Lat,
		Lon:        g.head.Lon,
		Chargers:   views,
	}
}

func chargerView(c models.Charger) models.ChargerView {
	return models.ChargerView{
		ExternalID:         c.ExternalID,
		Name:               c.Name,
		TypeCode:           c.TypeCode,
		TypeLabel:          codes.DecodeTypeCode(c.TypeCode),
		StatusCode:         c.StatusCode,
		Status:             string(codes.DecodeStatus(c.StatusCode)),
		ProviderStatusTime: c.ProviderStatusTime,
		ServerStatusTime:   c.ServerStatusTime,
	}
}
