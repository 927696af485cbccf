package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReconnectPolicyDelaySequence(t *testing.T) {
	policy := DefaultReconnectPolicy()

	var waits []time.Duration
	delay := policy.InitialDelay
	for attempt := 0; policy.ShouldRetry(false, attempt); attempt++ {
		waits = append(waits, delay)
		delay = policy.NextDelay(delay)
	}

	expected := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
	}
	assert.Equal(t, expected, waits)
}

func TestReconnectPolicyCeiling(t *testing.T) {
	policy := DefaultReconnectPolicy()

	assert.Equal(t, 30*time.Second, policy.NextDelay(16*time.Second))
	assert.Equal(t, 30*time.Second, policy.NextDelay(30*time.Second))
}

func TestReconnectPolicyZeroDelayYieldsInitial(t *testing.T) {
	policy := DefaultReconnectPolicy()

	assert.Equal(t, policy.InitialDelay, policy.NextDelay(0))
}

func TestShouldRetryIntentionalCloseNeverRetries(t *testing.T) {
	policy := DefaultReconnectPolicy()

	for attempt := 0; attempt < 10; attempt++ {
		assert.False(t, policy.ShouldRetry(true, attempt))
	}
}

func TestShouldRetryBoundedByMaxAttempts(t *testing.T) {
	policy := DefaultReconnectPolicy()

	assert.True(t, policy.ShouldRetry(false, 0))
	assert.True(t, policy.ShouldRetry(false, 4))
	assert.False(t, policy.ShouldRetry(false, 5))
	assert.False(t, policy.ShouldRetry(false, 6))
}
