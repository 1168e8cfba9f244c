package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weatherify/internal/cache"
	"github.com/kjstillabower/weatherify/internal/models"
	"github.com/kjstillabower/weatherify/internal/observability"
)

// Autocompleter resolves free text into ranked place suggestions.
type Autocompleter interface {
	Autocomplete(ctx context.Context, text string) ([]models.PlaceSuggestion, error)
}

// CachedAutocompleter wraps an Autocompleter with a cache-aside layer keyed
// by normalized query text. Cache failures are logged and bypassed.
type CachedAutocompleter struct {
	next   Autocompleter
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedAutocompleter returns next wrapped with c. ttl is the entry lifetime.
func NewCachedAutocompleter(next Autocompleter, c cache.Cache, ttl time.Duration, logger *zap.Logger) *CachedAutocompleter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedAutocompleter{next: next, cache: c, ttl: ttl, logger: logger}
}

// Autocomplete serves from cache when possible, otherwise calls upstream with
// the original text and caches non-empty results.
func (a *CachedAutocompleter) Autocomplete(ctx context.Context, text string) ([]models.PlaceSuggestion, error) {
	key := normalizeQuery(text)

	cached, ok, err := a.cache.Get(ctx, key)
	if err != nil {
		observability.CacheErrorsTotal.WithLabelValues("get").Inc()
		a.logger.Warn("suggestion cache get failed", zap.String("query", key), zap.Error(err))
	} else if ok {
		observability.CacheLookupsTotal.WithLabelValues("hit").Inc()
		a.logger.Debug("suggestion cache hit", zap.String("query", key), zap.Int("count", len(cached)))
		return cached, nil
	}
	observability.CacheLookupsTotal.WithLabelValues("miss").Inc()

	suggestions, err := a.next.Autocomplete(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(suggestions) == 0 {
		return suggestions, nil
	}

	if setErr := a.cache.Set(ctx, key, suggestions, a.ttl); setErr != nil {
		observability.CacheErrorsTotal.WithLabelValues("set").Inc()
		a.logger.Warn("suggestion cache set failed", zap.String("query", key), zap.Error(setErr))
	}
	return suggestions, nil
}

// normalizeQuery lowercases, trims and collapses inner whitespace so that
// "  New   York" and "new york" share a cache entry.
func normalizeQuery(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
