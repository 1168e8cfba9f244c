package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/weatherify/internal/cache"
	"github.com/kjstillabower/weatherify/internal/client"
	"github.com/kjstillabower/weatherify/internal/config"
	"github.com/kjstillabower/weatherify/internal/geolocation"
	httphandler "github.com/kjstillabower/weatherify/internal/http"
	"github.com/kjstillabower/weatherify/internal/lifecycle"
	"github.com/kjstillabower/weatherify/internal/models"
	"github.com/kjstillabower/weatherify/internal/observability"
	"github.com/kjstillabower/weatherify/internal/panel"
	"github.com/kjstillabower/weatherify/internal/search"
	"github.com/kjstillabower/weatherify/internal/service"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	weatherClient, err := client.NewOpenMeteoClient(cfg.ForecastAPIURL, cfg.ForecastAPITimeout)
	if err != nil {
		logger.Fatal("forecast client", zap.Error(err))
	}
	geocodeClient, err := client.NewGeoapifyClient(cfg.GeocodeAPIKey, cfg.GeocodeReverseURL, cfg.GeocodeAutocompleteURL, cfg.GeocodeAPITimeout)
	if err != nil {
		logger.Fatal("geocode client", zap.Error(err))
	}

	suggestCache, err := newSuggestionCache(cfg)
	if err != nil {
		logger.Fatal("suggestion cache", zap.Error(err))
	}
	logger.Info("cache backend", zap.String("backend", cfg.CacheBackend))

	// workCtx bounds every background upstream call; it is cancelled only
	// after in-flight work has had a chance to drain.
	workCtx, cancelWork := context.WithCancel(context.Background())
	defer cancelWork()

	board := panel.NewBoard()
	dispatcher := service.NewDispatcher(workCtx, weatherClient, geocodeClient, logger)

	var suggester search.Autocompleter = geocodeClient
	if suggestCache.cache != nil {
		suggester = service.NewCachedAutocompleter(geocodeClient, suggestCache.cache, cfg.CacheTTL, logger)
	}
	controller := search.NewController(workCtx, suggester, dispatcher, board.Searched,
		search.WithDebounce(cfg.SearchDebounce),
		search.WithLogger(logger))

	locator, err := geolocation.NewLocator(cfg.GeolocationProvider, staticCoordinates(cfg), cfg.GeolocationIPAPIURL, cfg.GeolocationTimeout)
	if err != nil {
		logger.Fatal("geolocation", zap.Error(err))
	}
	probe := geolocation.NewProbe(locator, dispatcher, board.Current, cfg.GeolocationTimeout, logger)
	go probe.Run(workCtx)

	healthConfig := &httphandler.HealthConfig{StartTime: time.Now()}
	if suggestCache.pinger != nil {
		healthConfig.CachePing = suggestCache.pinger.Ping
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	handler := httphandler.NewHandler(board, controller, healthConfig, logger, cfg.SearchMaxTextLength)
	router := httphandler.NewRouter(handler, logger, httphandler.RouterConfig{
		Limiter:        limiter,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()
	lifecycle.SetPhase(lifecycle.Ready)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetPhase(lifecycle.ShuttingDown)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	logger.Info("waiting for in-flight work", zap.Int64("requests", httphandler.InFlightCount()))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.InFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, 50*time.Millisecond); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}
	controller.Close()
	if err := controller.Wait(waitCtx); err != nil {
		logger.Warn("autocomplete requests not completed", zap.Error(err))
	}
	if err := dispatcher.Wait(waitCtx); err != nil {
		logger.Warn("weather fetches not completed", zap.Error(err))
	}
	cancelWork()

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}

	if suggestCache.close != nil {
		if err := suggestCache.close(); err != nil {
			logger.Error("cache close", zap.Error(err))
		}
	}
	logger.Info("shutdown complete")
}

const redisTimeout = 500 * time.Millisecond

// suggestionCache is the selected cache backend plus its optional health
// check and close hook. cache is nil when caching is disabled.
type suggestionCache struct {
	cache  cache.Cache
	pinger cache.Pinger
	close  func() error
}

func newSuggestionCache(cfg *config.Config) (suggestionCache, error) {
	switch cfg.CacheBackend {
	case "none":
		return suggestionCache{}, nil
	case "memcached":
		mc, err := cache.NewMemcachedCache(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err != nil {
			return suggestionCache{}, err
		}
		return suggestionCache{cache: mc, pinger: mc, close: mc.Close}, nil
	case "redis":
		rc := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisDB, redisTimeout)
		return suggestionCache{cache: rc, pinger: rc, close: rc.Close}, nil
	case "in_memory", "":
		return suggestionCache{cache: cache.NewInMemoryCache(cfg.CacheTTL, 2*cfg.CacheTTL)}, nil
	}
	return suggestionCache{}, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
}

func staticCoordinates(cfg *config.Config) *models.Coordinates {
	if cfg.GeolocationLatitude == nil || cfg.GeolocationLongitude == nil {
		return nil
	}
	return &models.Coordinates{
		Latitude:  *cfg.GeolocationLatitude,
		Longitude: *cfg.GeolocationLongitude,
	}
}
