package app

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libdb "chargemap/libs/db"
	libredis "chargemap/libs/redis"

	"chargemap/internal/cache"
	"chargemap/internal/config"
	"chargemap/internal/geo"
	"chargemap/internal/geocode"
	httpserver "chargemap/internal/http"
	"chargemap/internal/http/handlers"
	"chargemap/internal/repository"
	"chargemap/internal/service"
	"chargemap/internal/upstream"
)

// App wires stations service dependencies.
type App struct {
	server      *httpserver.Server
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := libdb.NewPostgresDB(cfg.Database.DSN, cfg.StoreStmtTimeout())
	if err != nil {
		return nil, err
	}

	redisClient, err := libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	stationRepo := repository.NewStationRepository(sqlDB)
	chargerRepo := repository.NewChargerRepository(sqlDB)
	cacheStore := cache.NewStore(redisClient)
	provider := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.APIKey, cfg.UpstreamTimeout(), logger)
	geocoder := geocode.NewClient(cfg.Geocoder.BaseURL, cfg.GeocoderTimeout())
	canon := geo.NewCanonicalizer(cfg.Resolver.CoordRoundDecimals, cfg.Resolver.RadiusBuckets)

	resolver := service.NewResolver(canon, cacheStore, stationRepo, chargerRepo, provider, geocoder,
		service.Options{
			FreshnessHorizon: cfg.FreshnessHorizon(),
			SearchTTL:        cfg.SearchTTL(),
			DetailTTL:        cfg.DetailTTL(),
			RegionFallback:   cfg.Geocoder.RegionFallback,
		}, logger)

	routes := httpserver.Routes{
		SearchNearby:    handlers.NewSearchHandler(resolver, logger),
		StationDetail:   handlers.NewDetailHandler(resolver, logger),
		InvalidateCache: handlers.NewInvalidateHandler(resolver, logger),
		Health:          handlers.NewHealthHandler(sqlDB, redisClient),
	}

	router := httpserver.NewRouter(routes, logger)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
