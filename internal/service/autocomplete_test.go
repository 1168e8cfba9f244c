package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weatherify/internal/cache"
	"github.com/kjstillabower/weatherify/internal/models"
)

type countingAutocompleter struct {
	result []models.PlaceSuggestion
	err    error
	texts  []string
}

func (c *countingAutocompleter) Autocomplete(ctx context.Context, text string) ([]models.PlaceSuggestion, error) {
	c.texts = append(c.texts, text)
	return c.result, c.err
}

type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string) ([]models.PlaceSuggestion, bool, error) {
	return nil, false, errors.New("cache connection refused")
}

func (failingCache) Set(ctx context.Context, key string, value []models.PlaceSuggestion, ttl time.Duration) error {
	return errors.New("cache connection refused")
}

func TestCachedAutocompleter_MissThenHit(t *testing.T) {
	upstream := &countingAutocompleter{result: []models.PlaceSuggestion{{ID: "p1", FormattedName: "New York, USA"}}}
	a := NewCachedAutocompleter(upstream, cache.NewInMemoryCache(time.Minute, 0), time.Minute, zap.NewNop())
	ctx := context.Background()

	first, err := a.Autocomplete(ctx, "  New   York")
	if err != nil {
		t.Fatalf("Autocomplete() error = %v", err)
	}
	second, err := a.Autocomplete(ctx, "new york")
	if err != nil {
		t.Fatalf("Autocomplete() error = %v", err)
	}

	if len(upstream.texts) != 1 {
		t.Fatalf("upstream calls = %d, want 1", len(upstream.texts))
	}
	if upstream.texts[0] != "  New   York" {
		t.Errorf("upstream text = %q, want raw text", upstream.texts[0])
	}
	if len(first) != 1 || len(second) != 1 || second[0].ID != "p1" {
		t.Errorf("results = %+v / %+v", first, second)
	}
}

func TestCachedAutocompleter_EmptyResultsNotCached(t *testing.T) {
	upstream := &countingAutocompleter{result: []models.PlaceSuggestion{}}
	a := NewCachedAutocompleter(upstream, cache.NewInMemoryCache(time.Minute, 0), time.Minute, nil)

	_, _ = a.Autocomplete(context.Background(), "zzz")
	_, _ = a.Autocomplete(context.Background(), "zzz")

	if len(upstream.texts) != 2 {
		t.Errorf("upstream calls = %d, want 2", len(upstream.texts))
	}
}

func TestCachedAutocompleter_UpstreamErrorPropagates(t *testing.T) {
	wantErr := errors.New("boom")
	a := NewCachedAutocompleter(&countingAutocompleter{err: wantErr}, cache.NewInMemoryCache(time.Minute, 0), time.Minute, nil)

	if _, err := a.Autocomplete(context.Background(), "rome"); !errors.Is(err, wantErr) {
		t.Errorf("Autocomplete() error = %v, want %v", err, wantErr)
	}
}

func TestCachedAutocompleter_CacheFailureBypassed(t *testing.T) {
	upstream := &countingAutocompleter{result: []models.PlaceSuggestion{{ID: "p1"}}}
	a := NewCachedAutocompleter(upstream, failingCache{}, time.Minute, zap.NewNop())

	got, err := a.Autocomplete(context.Background(), "rome")
	if err != nil {
		t.Fatalf("Autocomplete() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}

func TestNormalizeQuery(t *testing.T) {
	tests := map[string]string{
		"Paris":          "paris",
		"  new   YORK  ": "new york",
		"\tsão\npaulo":   "são paulo",
		"":               "",
	}
	for in, want := range tests {
		if got := normalizeQuery(in); got != want {
			t.Errorf("normalizeQuery(%q) = %q, want %q", in, got, want)
		}
	}
}
