// Package icongen implements icon set generation against a hosted
// text-to-image provider.
//
// retry.go implements transient-failure classification and retry with
// exponential backoff. The delay function is injectable so backoff
// timing can be tested without real waits.
package icongen

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// RetryPolicy controls retry behavior for a GenerationClient.
// Immutable for the lifetime of the client; the backoff factor is
// fixed at 2.
type RetryPolicy struct {
	// MaxRetries is the total number of attempts, minimum 1.
	MaxRetries int

	// InitialDelay is the backoff before the second attempt; each
	// subsequent delay doubles.
	InitialDelay time.Duration
}

// DefaultRetryPolicy returns the standard policy: 3 attempts starting
// at a 1 second delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   3,
		InitialDelay: time.Second,
	}
}

// withDefaults fills in zero or invalid values.
func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxRetries < 1 {
		p.MaxRetries = 1
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = time.Second
	}
	return p
}

// Sleeper pauses for the given duration. It returns the context error
// if the context is canceled before the duration elapses.
type Sleeper func(ctx context.Context, d time.Duration) error

// defaultSleeper waits on the wall clock.
func defaultSleeper(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// transientNetCodes are network error codes presumed likely to succeed
// on retry.
var transientNetCodes = map[string]bool{
	"ETIMEDOUT":    true,
	"ECONNRESET":   true,
	"ENOTFOUND":    true,
	"ECONNREFUSED": true,
}

// transientMessageMarkers are message substrings that mark an otherwise
// opaque error as transient.
var transientMessageMarkers = []string{"timeout", "timed out", "connection reset", "network error"}

// netCoded is implemented by errors that carry a network error code.
// core.NetworkError implements it.
type netCoded interface {
	error
	NetworkCode() string
}

// statusCoded is implemented by errors that carry an HTTP status.
// core.APIError implements it.
type statusCoded interface {
	error
	StatusCode() int
}

// IsTransient reports whether an error is presumed likely to succeed if
// retried: a 5xx status, a transient network error code, or a message
// indicating a timeout or connection reset. A nil error is not transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var withStatus statusCoded
	if errors.As(err, &withStatus) {
		if s := withStatus.StatusCode(); s >= 500 && s <= 599 {
			return true
		}
	}

	var withCode netCoded
	if errors.As(err, &withCode) {
		if transientNetCodes[withCode.NetworkCode()] {
			return true
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMessageMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}

// ExecuteWithRetry runs op up to policy.MaxRetries times. Non-transient
// errors and final-attempt failures are returned immediately; transient
// failures sleep InitialDelay x 2^attempt before the next attempt.
//
// A nil sleep uses the wall clock.
func ExecuteWithRetry(ctx context.Context, policy RetryPolicy, sleep Sleeper, op func() error) error {
	p := policy.withDefaults()
	if sleep == nil {
		sleep = defaultSleeper
	}

	var lastErr error
	for attempt := 0; attempt < p.MaxRetries; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsTransient(err) || attempt == p.MaxRetries-1 {
			return err
		}

		delay := p.InitialDelay * time.Duration(1<<attempt)
		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}
	}

	return lastErr
}
