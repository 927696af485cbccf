package realtime

// State is the connection lifecycle state of a client. It is driven only by
// socket lifecycle callbacks and by explicit Connect/Disconnect calls.
type State int

const (
	// StateDisconnected means no connection exists and none is being attempted.
	// This is both the initial state and the terminal state after retry
	// exhaustion or an explicit Disconnect.
	StateDisconnected State = iota

	// StateConnecting means an explicit Connect is establishing the handshake.
	StateConnecting

	// StateOpen means the socket is fully open and frames flow.
	StateOpen

	// StateReconnecting means the connection dropped unintentionally and a
	// backoff timer is pending or a redial is in flight.
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// StateHandler observes state transitions. Invoked synchronously after the
// transition has been committed; it must not call back into the client.
type StateHandler func(from, to State)
