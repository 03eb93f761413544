package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "chargemap/libs/config"
)

// Config defines stations service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"STATIONS_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN            string `yaml:"dsn" env:"STATIONS_POSTGRES_DSN"`
		StmtTimeoutSec int    `yaml:"stmtTimeoutSeconds" env:"STORE_STMT_TIMEOUT_SEC"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"STATIONS_REDIS_ADDR"`
		Password string `yaml:"password" env:"STATIONS_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"STATIONS_REDIS_DB"`
	} `yaml:"redis"`
	Upstream struct {
		BaseURL    string `yaml:"baseUrl" env:"UPSTREAM_BASE_URL"`
		APIKey     string `yaml:"apiKey" env:"UPSTREAM_API_KEY"`
		TimeoutSec int    `yaml:"timeoutSeconds" env:"UPSTREAM_TIMEOUT_SEC"`
	} `yaml:"upstream"`
	Geocoder struct {
		BaseURL        string `yaml:"baseUrl" env:"GEOCODER_BASE_URL"`
		TimeoutSec     int    `yaml:"timeoutSeconds" env:"GEOCODER_TIMEOUT_SEC"`
		RegionFallback string `yaml:"regionFallback" env:"DEFAULT_REGION_FALLBACK"`
	} `yaml:"geocoder"`
	Resolver struct {
		FreshnessHorizonMin int   `yaml:"freshnessHorizonMinutes" env:"FRESHNESS_HORIZON_MIN"`
		TTLSearchSec        int   `yaml:"ttlSearchSeconds" env:"TTL_SEARCH_SEC"`
		TTLDetailSec        int   `yaml:"ttlDetailSeconds" env:"TTL_DETAIL_SEC"`
		CoordRoundDecimals  int   `yaml:"coordRoundDecimals" env:"COORD_ROUND_DECIMALS"`
		RadiusBuckets       []int `yaml:"radiusBuckets" env:"RADIUS_BUCKETS"`
	} `yaml:"resolver"`
}

// Load reads configuration via shared helper and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8084"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Database.StmtTimeoutSec = 5
	cfg.Upstream.TimeoutSec = 30
	cfg.Geocoder.TimeoutSec = 10
	cfg.Geocoder.RegionFallback = "서울특별시"
	cfg.Resolver.FreshnessHorizonMin = 30
	cfg.Resolver.TTLSearchSec = 300
	cfg.Resolver.TTLDetailSec = 1800
	cfg.Resolver.CoordRoundDecimals = 8
	cfg.Resolver.RadiusBuckets = []int{500, 1000, 2000, 3000, 5000, 10000}

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		return nil, errors.New("config: redis addr required")
	}
	if strings.TrimSpace(cfg.Upstream.BaseURL) == "" {
		return nil, errors.New("config: upstream base url required")
	}
	if strings.TrimSpace(cfg.Upstream.APIKey) == "" {
		return nil, errors.New("config: upstream api key required")
	}
	if len(cfg.Resolver.RadiusBuckets) == 0 {
		return nil, errors.New("config: radius buckets required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8084"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// FreshnessHorizon returns the maximum tolerated charger status age.
func (c *Config) FreshnessHorizon() time.Duration {
	if c.Resolver.FreshnessHorizonMin <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Resolver.FreshnessHorizonMin) * time.Minute
}

// SearchTTL returns cache TTL for search responses.
func (c *Config) SearchTTL() time.Duration {
	if c.Resolver.TTLSearchSec <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Resolver.TTLSearchSec) * time.Second
}

// DetailTTL returns cache TTL for detail responses.
func (c *Config) DetailTTL() time.Duration {
	if c.Resolver.TTLDetailSec <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Resolver.TTLDetailSec) * time.Second
}

// UpstreamTimeout returns the provider request timeout.
func (c *Config) UpstreamTimeout() time.Duration {
	if c.Upstream.TimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Upstream.TimeoutSec) * time.Second
}

// GeocoderTimeout returns the reverse-geocode request timeout.
func (c *Config) GeocoderTimeout() time.Duration {
	if c.Geocoder.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Geocoder.TimeoutSec) * time.Second
}

// StoreStmtTimeout returns the per-statement database timeout.
func (c *Config) StoreStmtTimeout() time.Duration {
	if c.Database.StmtTimeoutSec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Database.StmtTimeoutSec) * time.Second
}
