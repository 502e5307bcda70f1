package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"crypto-observer/src/logger"
	"crypto-observer/src/models"
)

// -----------------------------------------------------------------------------
// Registry guards calls to upstream services with a per-service circuit breaker
// and a per-service token-bucket rate limiter. Breakers are created lazily on
// first use of a service name and live for the process lifetime.
// -----------------------------------------------------------------------------

type Registry struct {
	config BreakerConfig
	logger *logger.Logger

	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
	limiters map[string]*rate.Limiter
	lastGood map[string]interface{} // last successful result per service+value key
}

// -----------------------------------------------------------------------------

func NewRegistry(cfg models.MBreakerConfig, log *logger.Logger) *Registry {
	return &Registry{
		config: BreakerConfig{
			FailureThreshold: cfg.FailureThreshold,
			SuccessThreshold: cfg.SuccessThreshold,
			ResetTimeout:     time.Duration(cfg.ResetTimeoutSeconds) * time.Second,
		},
		logger:   log,
		breakers: make(map[string]*CircuitBreaker),
		limiters: make(map[string]*rate.Limiter),
		lastGood: make(map[string]interface{}),
	}
}

// -----------------------------------------------------------------------------

// ConfigureLimit sets the request rate for a service. Services without an
// explicit limit are not throttled (the breaker still guards them).
func (r *Registry) ConfigureLimit(service string, perSecond float64, burst int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.limiters[service] = rate.NewLimiter(rate.Limit(perSecond), burst)
}

// -----------------------------------------------------------------------------

// breaker returns the breaker for service, creating it on first use.
func (r *Registry) breaker(service string) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	cb, ok := r.breakers[service]
	if !ok {
		cb = NewCircuitBreaker(service, r.config)
		r.breakers[service] = cb
	}
	return cb
}

// -----------------------------------------------------------------------------

// Execute runs op under the service's breaker and rate limiter.
//
// valueKey scopes the last-good tracking (e.g. the asset id a fetch is for);
// pass "" to disable tracking for the call.
//
// When the circuit is open the call is short-circuited: the last successful
// value for (service, valueKey), if tracked, or fallback is returned with a
// nil error, so a known-bad upstream never surfaces as a failure to the
// caller. When op itself fails, the failure is recorded and (fallback, err)
// is returned; the caller decides how to degrade.
func (r *Registry) Execute(ctx context.Context, service, valueKey string, op func() (interface{}, error), fallback interface{}) (interface{}, error) {
	cb := r.breaker(service)

	if err := cb.Allow(); err != nil {
		r.logger.Debug("Circuit open for %s, substituting fallback", service)
		if valueKey != "" {
			if cached, ok := r.getLastGood(service + "|" + valueKey); ok {
				return cached, nil
			}
		}
		return fallback, nil
	}

	if limiter := r.limiter(service); limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			// Cancellation while queued is not an upstream failure, but the
			// admitted call slot must be released or a half-open trial leaks.
			cb.CancelTrial()
			return fallback, err
		}
	}

	result, err := op()
	if err != nil {
		cb.RecordFailure()
		return fallback, err
	}

	cb.RecordSuccess()
	if valueKey != "" {
		r.setLastGood(service+"|"+valueKey, result)
	}
	return result, nil
}

// -----------------------------------------------------------------------------

func (r *Registry) limiter(service string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limiters[service]
}

// -----------------------------------------------------------------------------

func (r *Registry) getLastGood(key string) (interface{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.lastGood[key]
	return v, ok
}

func (r *Registry) setLastGood(key string, v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastGood[key] = v
}

// -----------------------------------------------------------------------------

// States returns a snapshot of every known breaker, keyed by service name.
func (r *Registry) States() map[string]models.MBreakerStatus {
	r.mu.Lock()
	breakers := make(map[string]*CircuitBreaker, len(r.breakers))
	for name, cb := range r.breakers {
		breakers[name] = cb
	}
	r.mu.Unlock()

	states := make(map[string]models.MBreakerStatus, len(breakers))
	for name, cb := range breakers {
		states[name] = cb.Status()
	}
	return states
}
