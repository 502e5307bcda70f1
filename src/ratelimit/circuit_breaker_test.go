package ratelimit

import (
	"testing"
	"time"

	"crypto-observer/src/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func testBreaker(resetTimeout time.Duration) *CircuitBreaker {
	return NewCircuitBreaker("test-upstream", BreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		ResetTimeout:     resetTimeout,
	})
}

// -----------------------------------------------------------------------------

func TestBreakerOpensAfterFailureThreshold(t *testing.T) {
	cb := testBreaker(time.Minute)

	for i := 0; i < 2; i++ {
		require.NoError(t, cb.Allow())
		cb.RecordFailure()
		assert.Equal(t, StateClosed, cb.State())
	}

	require.NoError(t, cb.Allow())
	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())

	err := cb.Allow()
	require.Error(t, err)
	assert.True(t, helpers.IsCircuitOpen(err))
}

// -----------------------------------------------------------------------------

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := testBreaker(time.Minute)

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()

	// The streak was broken, so two more failures do not trip it
	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, StateClosed, cb.State())

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
}

// -----------------------------------------------------------------------------

func TestBreakerHalfOpenAdmitsSingleTrial(t *testing.T) {
	cb := testBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)

	// First call after the timeout becomes the trial
	require.NoError(t, cb.Allow())
	assert.Equal(t, StateHalfOpen, cb.State())

	// A second call while the trial is in flight is rejected
	err := cb.Allow()
	require.Error(t, err)
	assert.True(t, helpers.IsCircuitOpen(err))
}

// -----------------------------------------------------------------------------

func TestBreakerRecoversAfterSuccessThreshold(t *testing.T) {
	cb := testBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, cb.Allow())
	cb.RecordSuccess()
	assert.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Allow())
	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.State())
}

// -----------------------------------------------------------------------------

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := testBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, cb.Allow())
	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())

	// And the reset timer starts over
	err := cb.Allow()
	require.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestBreakerCancelTrialReleasesHalfOpenSlot(t *testing.T) {
	cb := testBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	time.Sleep(20 * time.Millisecond)

	// The trial is admitted but never reaches the upstream
	require.NoError(t, cb.Allow())
	cb.CancelTrial()

	// The slot is free again without waiting out another reset timeout
	require.NoError(t, cb.Allow())
	cb.RecordSuccess()
	require.NoError(t, cb.Allow())
	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.State())
}

// -----------------------------------------------------------------------------

func TestBreakerStatusSnapshot(t *testing.T) {
	cb := testBreaker(time.Minute)

	cb.RecordFailure()
	status := cb.Status()

	assert.Equal(t, "closed", status.State)
	assert.Equal(t, 1, status.Failures)
	assert.NotZero(t, status.LastFailureUnix)
}
