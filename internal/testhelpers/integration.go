//go:build integration
// +build integration

package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/kjstillabower/weatherify/internal/cache"
	"github.com/kjstillabower/weatherify/internal/client"
)

// IntegrationTestConfig holds configuration for live integration tests.
type IntegrationTestConfig struct {
	GeocodeAPIKey  string
	ForecastAPIURL string
	CacheBackend   string // "in_memory", "memcached" or "redis"
	MemcachedAddr  string
	RedisAddr      string
}

// GetIntegrationConfig loads integration test configuration from environment.
// Skips the test if GEOCODE_API_KEY is not set.
func GetIntegrationConfig(t *testing.T) IntegrationTestConfig {
	t.Helper()
	apiKey := os.Getenv("GEOCODE_API_KEY")
	if apiKey == "" {
		t.Skip("GEOCODE_API_KEY not set, skipping integration test")
	}

	cfg := IntegrationTestConfig{
		GeocodeAPIKey:  apiKey,
		ForecastAPIURL: os.Getenv("FORECAST_API_URL"),
		CacheBackend:   os.Getenv("INTEGRATION_CACHE_BACKEND"),
		MemcachedAddr:  os.Getenv("MEMCACHED_ADDRS"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
	}
	if cfg.ForecastAPIURL == "" {
		cfg.ForecastAPIURL = client.DefaultForecastURL
	}
	if cfg.MemcachedAddr == "" {
		cfg.MemcachedAddr = "localhost:11211"
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	return cfg
}

// SetupIntegrationClients returns live forecast and geocode clients.
func SetupIntegrationClients(t *testing.T, cfg IntegrationTestConfig) (*client.OpenMeteoClient, *client.GeoapifyClient) {
	t.Helper()
	weather, err := client.NewOpenMeteoClient(cfg.ForecastAPIURL, 10*time.Second)
	if err != nil {
		t.Fatalf("NewOpenMeteoClient() error = %v", err)
	}
	geocoder, err := client.NewGeoapifyClient(cfg.GeocodeAPIKey, "", "", 10*time.Second)
	if err != nil {
		t.Fatalf("NewGeoapifyClient() error = %v", err)
	}
	return weather, geocoder
}

// SetupIntegrationCache returns the configured suggestion cache, falling back
// to in-memory when the remote backend is unreachable.
func SetupIntegrationCache(t *testing.T, cfg IntegrationTestConfig) (cache.Cache, func()) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	switch cfg.CacheBackend {
	case "memcached":
		mc, err := cache.NewMemcachedCache(cfg.MemcachedAddr, 500*time.Millisecond, 2)
		if err == nil && mc.Ping(ctx) == nil {
			t.Logf("Using memcached at %s", cfg.MemcachedAddr)
			return mc, func() { _ = mc.Close() }
		}
		t.Logf("memcached not available, using in-memory cache")
	case "redis":
		rc := cache.NewRedisCache(cfg.RedisAddr, 0, 500*time.Millisecond)
		if rc.Ping(ctx) == nil {
			t.Logf("Using redis at %s", cfg.RedisAddr)
			return rc, func() { _ = rc.Close() }
		}
		_ = rc.Close()
		t.Logf("redis not available, using in-memory cache")
	}
	return cache.NewInMemoryCache(5*time.Minute, time.Minute), func() {}
}
