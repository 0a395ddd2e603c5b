package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		FailureThreshold:    3,
		SuccessThreshold:    1,
		Timeout:             50 * time.Millisecond,
		HalfOpenMaxRequests: 1,
	}
}

func fail() error { return errors.New("upstream down") }
func ok() error   { return nil }

func TestClosedPassesThrough(t *testing.T) {
	cb := NewCircuitBreaker(testConfig())

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})

	assert.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestClosedReturnsFnError(t *testing.T) {
	cb := NewCircuitBreaker(testConfig())

	err := cb.Execute(fail)

	assert.EqualError(t, err, "upstream down")
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(testConfig())

	for i := 0; i < 3; i++ {
		require.Error(t, cb.Execute(fail))
	}

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrCircuitBreakerOpen)
	assert.False(t, called)
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(testConfig())

	require.Error(t, cb.Execute(fail))
	require.Error(t, cb.Execute(fail))
	require.NoError(t, cb.Execute(ok))
	require.Error(t, cb.Execute(fail))
	require.Error(t, cb.Execute(fail))

	// Still below the consecutive threshold, so requests pass.
	assert.NoError(t, cb.Execute(ok))
}

func TestHalfOpenProbesAfterTimeoutAndCloses(t *testing.T) {
	cb := NewCircuitBreaker(testConfig())

	for i := 0; i < 3; i++ {
		require.Error(t, cb.Execute(fail))
	}
	require.ErrorIs(t, cb.Execute(ok), ErrCircuitBreakerOpen)

	time.Sleep(60 * time.Millisecond)

	// First probe after the timeout goes through.
	assert.NoError(t, cb.Execute(ok))
	// The next request observes the success and closes the breaker.
	assert.NoError(t, cb.Execute(ok))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(testConfig())

	for i := 0; i < 3; i++ {
		require.Error(t, cb.Execute(fail))
	}
	require.ErrorIs(t, cb.Execute(ok), ErrCircuitBreakerOpen)

	time.Sleep(60 * time.Millisecond)

	assert.EqualError(t, cb.Execute(fail), "upstream down")
	assert.Equal(t, StateOpen, cb.GetState())
	assert.ErrorIs(t, cb.Execute(ok), ErrCircuitBreakerOpen)
}

func TestResetClosesBreaker(t *testing.T) {
	cb := NewCircuitBreaker(testConfig())

	for i := 0; i < 3; i++ {
		require.Error(t, cb.Execute(fail))
	}
	require.ErrorIs(t, cb.Execute(ok), ErrCircuitBreakerOpen)

	cb.Reset()

	assert.Equal(t, StateClosed, cb.GetState())
	assert.NoError(t, cb.Execute(ok))
}
