package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/kjstillabower/weatherify/internal/cache"
	"github.com/kjstillabower/weatherify/internal/config"
	"github.com/kjstillabower/weatherify/internal/models"
)

func TestNewSuggestionCache(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name       string
		cfg        config.Config
		wantCache  bool
		wantPinger bool
		wantErr    bool
	}{
		{name: "none", cfg: config.Config{CacheBackend: "none"}},
		{name: "in_memory", cfg: config.Config{CacheBackend: "in_memory", CacheTTL: time.Minute}, wantCache: true},
		{name: "redis", cfg: config.Config{CacheBackend: "redis", RedisAddr: mr.Addr()}, wantCache: true, wantPinger: true},
		{name: "memcached", cfg: config.Config{CacheBackend: "memcached", MemcachedAddrs: "localhost:11211", MemcachedTimeout: 100 * time.Millisecond, MemcachedMaxIdleConns: 1}, wantCache: true, wantPinger: true},
		{name: "unknown", cfg: config.Config{CacheBackend: "disk"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := newSuggestionCache(&tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("newSuggestionCache() error = %v", err)
			}
			if (sc.cache != nil) != tt.wantCache {
				t.Errorf("cache set = %v, want %v", sc.cache != nil, tt.wantCache)
			}
			if (sc.pinger != nil) != tt.wantPinger {
				t.Errorf("pinger set = %v, want %v", sc.pinger != nil, tt.wantPinger)
			}
			if sc.close != nil {
				defer sc.close()
			}
		})
	}
}

func TestNewSuggestionCache_RedisRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	sc, err := newSuggestionCache(&config.Config{CacheBackend: "redis", RedisAddr: mr.Addr()})
	if err != nil {
		t.Fatalf("newSuggestionCache() error = %v", err)
	}
	defer sc.close()

	ctx := context.Background()
	if err := sc.pinger.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	batch := []models.PlaceSuggestion{{ID: "x", FormattedName: "Oslo, Norway"}}
	if err := sc.cache.Set(ctx, "oslo", batch, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok, err := sc.cache.Get(ctx, "oslo")
	if err != nil || !ok || len(got) != 1 {
		t.Errorf("Get() = %+v, %v, %v", got, ok, err)
	}
	var _ cache.Pinger = sc.pinger
}

func TestStaticCoordinates(t *testing.T) {
	lat, lon := 59.91, 10.75
	if got := staticCoordinates(&config.Config{}); got != nil {
		t.Errorf("staticCoordinates() = %+v, want nil", got)
	}
	got := staticCoordinates(&config.Config{GeolocationLatitude: &lat, GeolocationLongitude: &lon})
	if got == nil || got.Latitude != lat || got.Longitude != lon {
		t.Errorf("staticCoordinates() = %+v", got)
	}
}
