package ratelimit

import (
	"sync"
	"time"

	"crypto-observer/src/helpers"
	"crypto-observer/src/models"
)

// -----------------------------------------------------------------------------
// Circuit breaker state machine (per upstream service name):
//
//   CLOSED    -> OPEN       after FailureThreshold consecutive failures
//   OPEN      -> HALF_OPEN  once ResetTimeout has elapsed since the last failure
//   HALF_OPEN -> CLOSED     after SuccessThreshold consecutive successes
//   HALF_OPEN -> OPEN       on any failure
//
// HALF_OPEN admits exactly one trial call at a time.
// -----------------------------------------------------------------------------

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------

type BreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	ResetTimeout     time.Duration
}

// -----------------------------------------------------------------------------

type CircuitBreaker struct {
	service string
	config  BreakerConfig

	mu          sync.Mutex
	state       State
	failures    int
	successes   int
	probing     bool // a HALF_OPEN trial call is in flight
	lastFailure time.Time
}

// -----------------------------------------------------------------------------

func NewCircuitBreaker(service string, config BreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		service: service,
		config:  config,
		state:   StateClosed,
	}
}

// -----------------------------------------------------------------------------

// Allow reports whether a call may proceed. Returns *helpers.CircuitOpenError
// when the circuit is open (or a half-open trial is already in flight).
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil

	case StateOpen:
		if time.Since(cb.lastFailure) >= cb.config.ResetTimeout {
			cb.transitionTo(StateHalfOpen)
			cb.probing = true
			return nil
		}
		return &helpers.CircuitOpenError{Service: cb.service}

	case StateHalfOpen:
		if cb.probing {
			return &helpers.CircuitOpenError{Service: cb.service}
		}
		cb.probing = true
		return nil
	}
	return nil
}

// -----------------------------------------------------------------------------

// RecordSuccess registers a successful call.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.probing = false
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.transitionTo(StateClosed)
		}
	}
}

// -----------------------------------------------------------------------------

// RecordFailure registers a failed call.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailure = time.Now()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.config.FailureThreshold {
			cb.transitionTo(StateOpen)
		}
	case StateHalfOpen:
		cb.probing = false
		cb.transitionTo(StateOpen)
	}
}

// -----------------------------------------------------------------------------

// CancelTrial releases an admitted call slot without counting an outcome.
// Used when a call admitted by Allow never reaches the upstream (e.g. the
// caller's context is cancelled while queued on the rate limiter); otherwise
// a half-open trial slot would leak and wedge the breaker in HALF_OPEN.
func (cb *CircuitBreaker) CancelTrial() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.probing = false
	}
}

// -----------------------------------------------------------------------------

// transitionTo must be called with cb.mu held.
func (cb *CircuitBreaker) transitionTo(newState State) {
	cb.state = newState

	switch newState {
	case StateClosed:
		cb.failures = 0
		cb.successes = 0
	case StateOpen:
		cb.successes = 0
	case StateHalfOpen:
		cb.successes = 0
		cb.probing = false
	}
}

// -----------------------------------------------------------------------------

// State returns the current circuit state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// -----------------------------------------------------------------------------

// Status returns a snapshot for the observability surfaces.
func (cb *CircuitBreaker) Status() models.MBreakerStatus {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	status := models.MBreakerStatus{
		State:     cb.state.String(),
		Failures:  cb.failures,
		Successes: cb.successes,
	}
	if !cb.lastFailure.IsZero() {
		status.LastFailureUnix = cb.lastFailure.Unix()
	}
	return status
}
