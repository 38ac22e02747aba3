package parser

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultBackoff = 60 * time.Second
	maxBackoff     = 15 * time.Minute
)

// RateLimitError reports an HTTP 429 from a model provider. The ensemble
// uses RetryAfter to open that side's circuit so queued documents keep
// flowing through the other model in the meantime.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError wraps a provider 429. A missing or zero retryAfterSecs
// falls back to 60s; absurdly large values are clamped to 15m so one bad
// header cannot park a model for hours.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	backoff := time.Duration(retryAfterSecs) * time.Second
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: backoff,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader reads a Retry-After value as delay seconds. The
// header may also carry an HTTP-date (RFC 9110); both forms are accepted.
// Returns 0 when the value is empty or unparseable.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return secs
	}
	if at, err := http.ParseTime(val); err == nil {
		if d := time.Until(at); d > 0 {
			return int(d / time.Second)
		}
	}
	return 0
}
