package client

import (
	"context"
	"errors"
	"strings"
)

// ErrorCategory is a stable label for error classification in logs and metrics.
type ErrorCategory string

// Error category constants used as the error_category log field and upstreamErrorsTotal label.
const (
	ErrorCategoryPermissionDenied    ErrorCategory = "permission_denied"
	ErrorCategoryPlatformUnsupported ErrorCategory = "platform_unsupported"
	ErrorCategoryPositionUnavailable ErrorCategory = "position_unavailable"
	ErrorCategoryTimeout             ErrorCategory = "timeout"
	ErrorCategoryNetwork             ErrorCategory = "network"
	ErrorCategoryInvalidAPIKey       ErrorCategory = "invalid_api_key"
	ErrorCategoryUpstream            ErrorCategory = "upstream"
	ErrorCategoryMalformed           ErrorCategory = "malformed_response"
	ErrorCategoryEmptyResult         ErrorCategory = "empty_result"
	ErrorCategoryInvalidGeometry     ErrorCategory = "invalid_geometry"
	ErrorCategoryUnknown             ErrorCategory = "unknown"
)

// CategorizeError maps an error to a stable ErrorCategory.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorCategoryTimeout
	}

	switch {
	case errors.Is(err, ErrPermissionDenied):
		return ErrorCategoryPermissionDenied
	case errors.Is(err, ErrPlatformUnsupported):
		return ErrorCategoryPlatformUnsupported
	case errors.Is(err, ErrPositionUnavailable):
		return ErrorCategoryPositionUnavailable
	case errors.Is(err, ErrInvalidAPIKey):
		return ErrorCategoryInvalidAPIKey
	case errors.Is(err, ErrMalformedResponse):
		return ErrorCategoryMalformed
	case errors.Is(err, ErrEmptyResult):
		return ErrorCategoryEmptyResult
	case errors.Is(err, ErrInvalidGeometry):
		return ErrorCategoryInvalidGeometry
	case errors.Is(err, ErrUpstreamFailure):
		return ErrorCategoryUpstream
	}

	errStr := err.Error()
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		return ErrorCategoryTimeout
	}

	if errors.Is(err, ErrNetworkFailure) || strings.Contains(errStr, "connection") {
		return ErrorCategoryNetwork
	}

	return ErrorCategoryUnknown
}
