package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff(t *testing.T) {
	base := 100 * time.Millisecond

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{-1, 100 * time.Millisecond},
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, 1600 * time.Millisecond},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ExponentialBackoff(tt.attempt, base), "attempt %d", tt.attempt)
	}
}

func TestCappedBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, CappedBackoff(1, time.Second, 30*time.Second))
	assert.Equal(t, 30*time.Second, CappedBackoff(5, time.Second, 30*time.Second))
	// overflow wraps to a non-positive duration
	assert.Equal(t, 30*time.Second, CappedBackoff(70, time.Second, 30*time.Second))
}
