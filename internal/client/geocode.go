package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/kjstillabower/weatherify/internal/models"
	"github.com/kjstillabower/weatherify/internal/observability"
)

const (
	// DefaultReverseGeocodeURL is the Geoapify reverse geocoding endpoint.
	DefaultReverseGeocodeURL = "https://api.geoapify.com/v1/geocode/reverse"
	// DefaultAutocompleteURL is the Geoapify autocomplete endpoint.
	DefaultAutocompleteURL = "https://api.geoapify.com/v1/geocode/autocomplete"

	// UnknownLocation is the label used when reverse geocoding finds nothing.
	UnknownLocation = "Unknown location"

	userAgent = "weatherify/1.0"
)

// GeocodeClient resolves place names for positions and place suggestions for free text.
type GeocodeClient interface {
	ReverseLookup(ctx context.Context, coords models.Coordinates) (string, error)
	Autocomplete(ctx context.Context, text string) ([]models.PlaceSuggestion, error)
}

// GeoapifyClient implements GeocodeClient. The API key is fixed at construction.
type GeoapifyClient struct {
	apiKey          string
	reverseURL      string
	autocompleteURL string
	client          *resty.Client
}

// NewGeoapifyClient returns a client keyed by apiKey. Empty URLs fall back to
// the public Geoapify endpoints. A zero timeout keeps the transport default.
func NewGeoapifyClient(apiKey, reverseURL, autocompleteURL string, timeout time.Duration) (*GeoapifyClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidAPIKey)
	}
	if reverseURL == "" {
		reverseURL = DefaultReverseGeocodeURL
	}
	if autocompleteURL == "" {
		autocompleteURL = DefaultAutocompleteURL
	}

	rc := resty.New().
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)
	if timeout > 0 {
		rc.SetTimeout(timeout)
	}

	return &GeoapifyClient{
		apiKey:          apiKey,
		reverseURL:      reverseURL,
		autocompleteURL: autocompleteURL,
		client:          rc,
	}, nil
}

// featureCollection is the GeoJSON subset returned by both Geoapify endpoints.
type featureCollection struct {
	Features []struct {
		Properties struct {
			Formatted string `json:"formatted"`
			PlaceID   string `json:"place_id"`
		} `json:"properties"`
		Geometry *struct {
			Type        string    `json:"type"`
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// ReverseLookup returns the formatted address of the first result, or
// UnknownLocation when the upstream has no match.
func (c *GeoapifyClient) ReverseLookup(ctx context.Context, coords models.Coordinates) (string, error) {
	fc, err := c.get(ctx, observability.UpstreamGeocodeReverse, c.reverseURL, map[string]string{
		"lat":    formatCoord(coords.Latitude),
		"lon":    formatCoord(coords.Longitude),
		"apiKey": c.apiKey,
	})
	if err != nil {
		return "", err
	}
	if len(fc.Features) == 0 {
		return UnknownLocation, nil
	}
	return fc.Features[0].Properties.Formatted, nil
}

// Autocomplete returns suggestions in upstream relevance order. Features
// without a usable [lon, lat] pair keep a nil Coordinates so the caller can
// reject them on selection.
func (c *GeoapifyClient) Autocomplete(ctx context.Context, text string) ([]models.PlaceSuggestion, error) {
	fc, err := c.get(ctx, observability.UpstreamGeocodeAutocomplete, c.autocompleteURL, map[string]string{
		"text":   text,
		"apiKey": c.apiKey,
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.PlaceSuggestion, 0, len(fc.Features))
	for _, f := range fc.Features {
		s := models.PlaceSuggestion{
			ID:            f.Properties.PlaceID,
			FormattedName: f.Properties.Formatted,
		}
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		if f.Geometry != nil && len(f.Geometry.Coordinates) == 2 {
			s.Coordinates = &models.Coordinates{
				Longitude: f.Geometry.Coordinates[0],
				Latitude:  f.Geometry.Coordinates[1],
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func (c *GeoapifyClient) get(ctx context.Context, service, endpoint string, params map[string]string) (featureCollection, error) {
	start := time.Now()

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(endpoint)
	if err != nil {
		observability.RecordUpstreamCall(service, "error", time.Since(start).Seconds())
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return featureCollection{}, fmt.Errorf("request timeout: %w", err)
		}
		return featureCollection{}, fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}

	observability.RecordUpstreamCall(service, statusLabel(resp.StatusCode()), time.Since(start).Seconds())

	if resp.StatusCode() == 401 || resp.StatusCode() == 403 {
		return featureCollection{}, fmt.Errorf("%w: HTTP %d: %s", ErrInvalidAPIKey, resp.StatusCode(), truncateBody(resp.Body()))
	}
	if !resp.IsSuccess() {
		return featureCollection{}, fmt.Errorf("%w: HTTP %d: %s", ErrUpstreamFailure, resp.StatusCode(), truncateBody(resp.Body()))
	}

	var fc featureCollection
	if err := json.Unmarshal(resp.Body(), &fc); err != nil {
		return featureCollection{}, fmt.Errorf("%w: parse response: %v", ErrMalformedResponse, err)
	}
	if fc.Features == nil {
		return featureCollection{}, fmt.Errorf("%w: missing features", ErrMalformedResponse)
	}
	return fc, nil
}
