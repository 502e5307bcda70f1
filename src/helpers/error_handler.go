package helpers

import (
	"errors"
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------
// Two of these are terminal and surfaced to API callers (NotFoundError,
// AggregationFailedError). The other two are recovered inside the aggregation
// pipeline and must never escape it.

// NotFoundError: no provider could resolve the query into an identity.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no provider could resolve query %q", e.Query)
}

// -----------------------------------------------------------------------------

// AggregationFailedError: identity resolved but zero providers returned data.
type AggregationFailedError struct {
	Query string
}

func (e *AggregationFailedError) Error() string {
	return fmt.Sprintf("no provider returned data for query %q", e.Query)
}

// -----------------------------------------------------------------------------

// ProviderAbstentionError: one provider failed, timed out or returned nothing.
// The aggregator logs it at debug level and continues with the other providers.
type ProviderAbstentionError struct {
	Provider string
	Cause    error
}

func (e *ProviderAbstentionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %s abstained: %v", e.Provider, e.Cause)
	}
	return fmt.Sprintf("provider %s abstained", e.Provider)
}

func (e *ProviderAbstentionError) Unwrap() error {
	return e.Cause
}

// -----------------------------------------------------------------------------

// CircuitOpenError: the service is known-bad and the call was short-circuited.
// Callers receive a fallback value instead; this error stays internal.
type CircuitOpenError struct {
	Service string
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit breaker open for service %s", e.Service)
}

// -----------------------------------------------------------------------------
// Classification helpers
// -----------------------------------------------------------------------------

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsAggregationFailed(err error) bool {
	var af *AggregationFailedError
	return errors.As(err, &af)
}

func IsAbstention(err error) bool {
	var pa *ProviderAbstentionError
	return errors.As(err, &pa)
}

func IsCircuitOpen(err error) bool {
	var co *CircuitOpenError
	return errors.As(err, &co)
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries times with exponential backoff.
func RetryWithBackoff(operation string, maxRetries int, baseDelay time.Duration, fn func() (interface{}, error)) (interface{}, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		fmt.Printf("Warning: Attempt %d/%d failed for %s: %v. Retrying in %v\n", attempt+1, maxRetries, operation, err, delay)
		time.Sleep(delay)
	}

	return nil, lastErr
}
