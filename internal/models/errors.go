package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoFeatures is returned when an analyze request selects no feature.
var ErrNoFeatures = errors.New("no features requested")

// HTTPError represents a non-2xx answer from the NLU service
type HTTPError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d for URL %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("HTTP %d for URL %s: %s", e.StatusCode, e.URL, e.Message)
}

// Retryable reports whether the service may succeed on a later attempt.
func (e *HTTPError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// ValidationError represents a malformed analyze request
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UnsupportedFeatureError lists features no configured analyzer can serve
type UnsupportedFeatureError struct {
	Features []string
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("unsupported features: %s", strings.Join(e.Features, ", "))
}
