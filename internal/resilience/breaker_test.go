package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		results  []bool // true = success, false = failure
		expected State
	}{
		{
			name:     "stays closed on successes",
			settings: Settings{MaxFailures: 3, Cooldown: time.Minute},
			results:  []bool{true, true, true},
			expected: StateClosed,
		},
		{
			name:     "opens after consecutive failures",
			settings: Settings{MaxFailures: 3, Cooldown: time.Minute},
			results:  []bool{false, false, false},
			expected: StateOpen,
		},
		{
			name:     "success resets the failure streak",
			settings: Settings{MaxFailures: 3, Cooldown: time.Minute},
			results:  []bool{false, false, true, false, false},
			expected: StateClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breaker := New("test", tt.settings)

			for _, success := range tt.results {
				_ = breaker.Execute(func() error {
					if success {
						return nil
					}
					return errors.New("failed")
				})
			}

			assert.Equal(t, tt.expected, breaker.State())
		})
	}
}

func TestBreakerRejectsWhileOpen(t *testing.T) {
	breaker := New("test", Settings{MaxFailures: 1, Cooldown: time.Minute})

	require.Error(t, breaker.Execute(func() error { return errors.New("failed") }))
	assert.Equal(t, StateOpen, breaker.State())

	err := breaker.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrOpen)
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	breaker := New("test", Settings{MaxFailures: 1, Cooldown: 5 * time.Millisecond})

	require.Error(t, breaker.Execute(func() error { return errors.New("failed") }))

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, breaker.State())

	require.NoError(t, breaker.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreakerReopensOnFailedProbe(t *testing.T) {
	breaker := New("test", Settings{MaxFailures: 1, Cooldown: 5 * time.Millisecond})

	require.Error(t, breaker.Execute(func() error { return errors.New("failed") }))
	time.Sleep(10 * time.Millisecond)

	require.Error(t, breaker.Execute(func() error { return errors.New("still down") }))
	assert.Equal(t, StateOpen, breaker.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "open", StateOpen.String())
}
