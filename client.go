package realtime

import (
	"context"
	"time"
)

type (
	// Client is the surface exposed to UI adapters. One client owns at most
	// one physical connection at a time, bound to at most one scope.
	Client interface {
		// Connect opens a connection for the given scope. A no-op while a
		// connection for the same scope is already open or connecting; an
		// open connection for a different scope is torn down first without
		// triggering reconnection.
		Connect(ctx context.Context, scope string) error
		// Disconnect closes the connection intentionally, cancels any pending
		// reconnection attempt and clears the scope. Idempotent.
		Disconnect()
		// On registers handler for the given event type. Subscriptions are
		// accepted with or without a live connection.
		On(eventType string, handler EventHandler)
		// Off removes exactly that handler reference from the event type.
		Off(eventType string, handler EventHandler)
		// IsConnected reports whether the socket is fully open right now.
		IsConnected() bool
		// State returns the current connection state.
		State() State
		// Scope returns the scope of the current connection, empty when
		// disconnected.
		Scope() string
		// Send serializes v to JSON and transmits it while open. When not
		// open the message is logged and dropped; Send never panics and no
		// outbound queueing is performed.
		Send(v any)
	}

	Option func(*scopedClient)
)

// WithLogger injects the logger used by the client, its registry and its
// transport. Defaults to a noop logger.
func WithLogger(logger Logger) Option {
	return func(c *scopedClient) {
		c.logger = logger
	}
}

// WithReconnectPolicy overrides the default backoff schedule.
func WithReconnectPolicy(policy ReconnectPolicy) Option {
	return func(c *scopedClient) {
		c.policy = policy
	}
}

// WithDialer swaps the transport dialer, primarily for tests.
func WithDialer(dialer Dialer) Option {
	return func(c *scopedClient) {
		c.dialer = dialer
	}
}

// WithStateHandler registers an observer for connection state transitions,
// letting adapters notice retry exhaustion without polling IsConnected.
func WithStateHandler(handler StateHandler) Option {
	return func(c *scopedClient) {
		c.onState = handler
	}
}

// WithKeepAlive sends a {"type":"ping"} frame every interval while the
// connection is open. Disabled by default.
func WithKeepAlive(interval time.Duration) Option {
	return func(c *scopedClient) {
		c.keepAliveEvery = interval
	}
}

// New builds a client. The getter supplies the base API URL and optional
// bearer token per dial; everything else has working defaults.
func New(getter ConnectionParamsGetter, opts ...Option) Client {
	c := &scopedClient{
		logger: NewNoopLogger(),
		policy: DefaultReconnectPolicy(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.dialer == nil {
		c.dialer = NewWebsocketDialer(c.logger, nil)
	}

	c.params = NewConnectionParamsRepo(c.logger, getter)
	c.registry = NewRegistry(c.logger)
	c.state = StateDisconnected
	c.delay = c.policy.InitialDelay

	return c
}
