package realtime

import "time"

// ReconnectPolicy bounds the automatic reconnection loop. The zero value
// disables reconnection entirely; use DefaultReconnectPolicy for the standard
// doubling schedule.
type ReconnectPolicy struct {
	// InitialDelay is the wait before the first reconnection attempt.
	InitialDelay time.Duration
	// MaxDelay caps the doubled delay.
	MaxDelay time.Duration
	// MaxAttempts is the number of automatic attempts before the client gives
	// up and waits for an explicit Connect.
	MaxAttempts int
}

// DefaultReconnectPolicy waits 1s, 2s, 4s, 8s, 16s and then stops.
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		MaxAttempts:  5,
	}
}

// ShouldRetry decides whether another automatic attempt is due. Intentional
// closes never retry, regardless of the attempt count.
func (p ReconnectPolicy) ShouldRetry(intentional bool, attempts int) bool {
	if intentional {
		return false
	}
	return attempts < p.MaxAttempts
}

// NextDelay doubles the current delay up to the ceiling. A non-positive
// current delay yields the initial delay.
func (p ReconnectPolicy) NextDelay(current time.Duration) time.Duration {
	if current <= 0 {
		return p.InitialDelay
	}
	next := current * 2
	if next > p.MaxDelay {
		next = p.MaxDelay
	}
	return next
}
