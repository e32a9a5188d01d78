package llm

import (
	"errors"
	"strings"
)

var (
	// ErrNoProviders means no API keys were found at startup. Fatal.
	ErrNoProviders = errors.New("no providers configured")

	// ErrUnknownProvider means a requested provider name is not configured.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrRetriesExhausted means every attempt of a logical call failed
	// with a transient error.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// retryMarkers are the case-insensitive substrings that classify a
// backend failure as transient: rate limits, quota exhaustion, and
// 5xx-class server errors. Anything else is terminal.
var retryMarkers = []string{"rate", "limit", "quota", "429", "500", "503", "resource_exhausted"}

// IsRetryable reports whether the failure should be retried with a
// rotated key and backoff.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range retryMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
