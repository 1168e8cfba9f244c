package client

import "errors"

// Error taxonomy shared by every upstream and platform call. Callers log and
// swallow these; nothing here is fatal.
var (
	ErrPermissionDenied    = errors.New("geolocation permission denied")
	ErrPlatformUnsupported = errors.New("geolocation unsupported")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrNetworkFailure      = errors.New("network failure")
	ErrUpstreamFailure     = errors.New("upstream failure")
	ErrMalformedResponse   = errors.New("malformed response")
	ErrEmptyResult         = errors.New("empty result")
	ErrInvalidGeometry     = errors.New("invalid geometry")
	ErrInvalidAPIKey       = errors.New("invalid API key")
)

// maxErrorBody caps how much of an upstream error body is kept in error messages.
const maxErrorBody = 512

func truncateBody(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody]) + "..."
	}
	return string(b)
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
