package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kjstillabower/weatherify/internal/models"
	"github.com/kjstillabower/weatherify/internal/observability"
)

const (
	// DefaultForecastURL is the Open-Meteo forecast endpoint.
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"

	currentFields = "temperature_2m,wind_speed_10m"
	hourlyFields  = "temperature_2m,relative_humidity_2m,wind_speed_10m"
)

// WeatherClient fetches current conditions for a position.
type WeatherClient interface {
	FetchCurrent(ctx context.Context, coords models.Coordinates) (models.WeatherSnapshot, error)
}

// OpenMeteoClient implements WeatherClient against the Open-Meteo forecast API.
// Coordinates are passed through unvalidated; the upstream rejects bad ranges.
type OpenMeteoClient struct {
	apiURL string
	client *http.Client
}

// NewOpenMeteoClient returns a client for apiURL. A zero timeout leaves the
// http.Client default (no client-side deadline).
func NewOpenMeteoClient(apiURL string, timeout time.Duration) (*OpenMeteoClient, error) {
	if apiURL == "" {
		apiURL = DefaultForecastURL
	}
	if _, err := url.Parse(apiURL); err != nil {
		return nil, fmt.Errorf("invalid forecast URL: %w", err)
	}
	return &OpenMeteoClient{
		apiURL: apiURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// openMeteoResponse mirrors the parts of the forecast payload we read. The
// hourly block is requested and decoded but not surfaced in snapshots yet.
type openMeteoResponse struct {
	Current *struct {
		Temperature2m *float64 `json:"temperature_2m"`
		WindSpeed10m  *float64 `json:"wind_speed_10m"`
	} `json:"current"`
	Hourly struct {
		Time               []string  `json:"time"`
		Temperature2m      []float64 `json:"temperature_2m"`
		RelativeHumidity2m []float64 `json:"relative_humidity_2m"`
		WindSpeed10m       []float64 `json:"wind_speed_10m"`
	} `json:"hourly"`
}

type openMeteoError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// FetchCurrent issues one forecast request. No retry is attempted.
func (c *OpenMeteoClient) FetchCurrent(ctx context.Context, coords models.Coordinates) (models.WeatherSnapshot, error) {
	start := time.Now()

	req, err := c.buildRequest(ctx, coords)
	if err != nil {
		observability.RecordUpstreamCall(observability.UpstreamForecast, "error", time.Since(start).Seconds())
		return models.WeatherSnapshot{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		observability.RecordUpstreamCall(observability.UpstreamForecast, "error", time.Since(start).Seconds())
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return models.WeatherSnapshot{}, fmt.Errorf("request timeout: %w", err)
		}
		return models.WeatherSnapshot{}, fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	observability.RecordUpstreamCall(observability.UpstreamForecast, statusLabel(resp.StatusCode), time.Since(start).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("%w: read response body: %w", ErrNetworkFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.WeatherSnapshot{}, forecastStatusError(resp.StatusCode, body)
	}

	var apiResp openMeteoResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("%w: parse response: %v", ErrMalformedResponse, err)
	}

	return mapForecast(apiResp)
}

func (c *OpenMeteoClient) buildRequest(ctx context.Context, coords models.Coordinates) (*http.Request, error) {
	baseURL, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	params := baseURL.Query()
	params.Set("latitude", formatCoord(coords.Latitude))
	params.Set("longitude", formatCoord(coords.Longitude))
	params.Set("current", currentFields)
	params.Set("hourly", hourlyFields)
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

func forecastStatusError(status int, body []byte) error {
	var apiErr openMeteoError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Reason != "" {
		return fmt.Errorf("%w: HTTP %d: %s", ErrUpstreamFailure, status, apiErr.Reason)
	}
	return fmt.Errorf("%w: HTTP %d: %s", ErrUpstreamFailure, status, truncateBody(body))
}

// mapForecast builds a snapshot only when both current fields are present.
func mapForecast(apiResp openMeteoResponse) (models.WeatherSnapshot, error) {
	if apiResp.Current == nil {
		return models.WeatherSnapshot{}, fmt.Errorf("%w: missing current block", ErrMalformedResponse)
	}
	if apiResp.Current.Temperature2m == nil || apiResp.Current.WindSpeed10m == nil {
		return models.WeatherSnapshot{}, fmt.Errorf("%w: incomplete current block", ErrMalformedResponse)
	}
	return models.WeatherSnapshot{
		TemperatureCelsius: *apiResp.Current.Temperature2m,
		WindSpeedKph:       *apiResp.Current.WindSpeed10m,
		FetchedAt:          time.Now(),
	}, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
