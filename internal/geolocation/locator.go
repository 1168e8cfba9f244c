package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kjstillabower/weatherify/internal/client"
	"github.com/kjstillabower/weatherify/internal/models"
	"github.com/kjstillabower/weatherify/internal/observability"
)

// Provider names accepted in configuration.
const (
	ProviderStatic = "static"
	ProviderIP     = "ip"
	ProviderNone   = "none"
)

// DefaultIPAPIURL answers with the caller's approximate position.
const DefaultIPAPIURL = "http://ip-api.com/json/?fields=status,message,lat,lon"

// Locator yields the host's current position.
type Locator interface {
	Locate(ctx context.Context) (models.Coordinates, error)
}

// StaticLocator returns configured coordinates.
type StaticLocator struct {
	coords *models.Coordinates
}

// NewStaticLocator returns a locator for fixed coordinates. A nil coords
// behaves like a platform without a position source.
func NewStaticLocator(coords *models.Coordinates) *StaticLocator {
	return &StaticLocator{coords: coords}
}

func (l *StaticLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	if l.coords == nil {
		return models.Coordinates{}, fmt.Errorf("%w: no static coordinates configured", client.ErrPlatformUnsupported)
	}
	return *l.coords, nil
}

// NoneLocator always fails, like a browser without a geolocation API.
type NoneLocator struct{}

func (NoneLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	return models.Coordinates{}, client.ErrPlatformUnsupported
}

// IPLocator resolves the position from the public IP address.
type IPLocator struct {
	url    string
	client *resty.Client
}

// NewIPLocator returns a locator querying url, or DefaultIPAPIURL when empty.
func NewIPLocator(url string, timeout time.Duration) *IPLocator {
	if url == "" {
		url = DefaultIPAPIURL
	}
	rc := resty.New().SetHeader("Accept", "application/json")
	if timeout > 0 {
		rc.SetTimeout(timeout)
	}
	return &IPLocator{url: url, client: rc}
}

type ipAPIResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

func (l *IPLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	start := time.Now()

	resp, err := l.client.R().SetContext(ctx).Get(l.url)
	if err != nil {
		observability.RecordUpstreamCall(observability.UpstreamGeolocation, "error", time.Since(start).Seconds())
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return models.Coordinates{}, fmt.Errorf("position request timeout: %w", err)
		}
		return models.Coordinates{}, fmt.Errorf("%w: %w", client.ErrNetworkFailure, err)
	}
	observability.RecordUpstreamCall(observability.UpstreamGeolocation, statusLabel(resp.StatusCode()), time.Since(start).Seconds())

	if resp.StatusCode() == 403 {
		return models.Coordinates{}, fmt.Errorf("%w: HTTP 403", client.ErrPermissionDenied)
	}
	if !resp.IsSuccess() {
		return models.Coordinates{}, fmt.Errorf("%w: HTTP %d", client.ErrUpstreamFailure, resp.StatusCode())
	}

	var body ipAPIResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: parse response: %v", client.ErrMalformedResponse, err)
	}
	if strings.EqualFold(body.Status, "fail") {
		return models.Coordinates{}, fmt.Errorf("%w: %s", client.ErrPositionUnavailable, body.Message)
	}
	if body.Lat == nil || body.Lon == nil {
		return models.Coordinates{}, fmt.Errorf("%w: missing lat/lon", client.ErrMalformedResponse)
	}
	return models.Coordinates{Latitude: *body.Lat, Longitude: *body.Lon}, nil
}

func statusLabel(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "success"
	case code >= 400 && code < 500:
		return "client_error"
	case code >= 500:
		return "server_error"
	}
	return "error"
}

// NewLocator builds the locator named by provider.
func NewLocator(provider string, static *models.Coordinates, ipAPIURL string, timeout time.Duration) (Locator, error) {
	switch provider {
	case ProviderStatic:
		return NewStaticLocator(static), nil
	case "", ProviderIP:
		return NewIPLocator(ipAPIURL, timeout), nil
	case ProviderNone:
		return NoneLocator{}, nil
	}
	return nil, fmt.Errorf("unknown geolocation provider %q", provider)
}
