package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

var keepAliveFrame = []byte(`{"type":"ping"}`)

// scopedClient binds the connection manager to the subscription registry. The
// connection manager part owns the single socket, its state machine and the
// reconnection loop; inbound frames are handed to the registry for fan-out.
//
// A connection epoch, incremented on every intentional teardown, is how stale
// read loops, stale keep-alive tickers and pending reconnect timers recognize
// they have been superseded: whatever they observe afterwards, they must not
// touch client state or schedule retries.
type scopedClient struct {
	logger         Logger
	policy         ReconnectPolicy
	dialer         Dialer
	params         ConnectionParamsRepo
	registry       *Registry
	onState        StateHandler
	keepAliveEvery time.Duration

	mu         sync.Mutex
	state      State
	scope      string
	epoch      uint64
	transport  Transport
	attempts   int
	delay      time.Duration
	retryTimer *time.Timer
}

func (c *scopedClient) Connect(ctx context.Context, scope string) error {
	c.mu.Lock()

	if c.scope == scope && (c.state == StateOpen || c.state == StateConnecting) {
		c.mu.Unlock()
		c.logger.Debugf("connect for scope %q is a no-op, already %s", scope, c.state)
		return nil
	}

	from := c.state
	c.teardownLocked()
	c.scope = scope
	c.attempts = 0
	c.delay = c.policy.InitialDelay
	c.state = StateConnecting
	epoch := c.epoch
	c.mu.Unlock()

	c.notifyState(from, StateConnecting)

	return c.dial(ctx, epoch)
}

func (c *scopedClient) Disconnect() {
	c.mu.Lock()

	if c.state == StateDisconnected && c.transport == nil && c.scope == "" {
		c.mu.Unlock()
		return
	}

	from := c.state
	c.teardownLocked()
	c.scope = ""
	c.mu.Unlock()

	c.logger.Infoln("disconnected intentionally")
	c.notifyState(from, StateDisconnected)
}

func (c *scopedClient) On(eventType string, handler EventHandler) {
	c.registry.On(eventType, handler)
}

func (c *scopedClient) Off(eventType string, handler EventHandler) {
	c.registry.Off(eventType, handler)
}

func (c *scopedClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateOpen && c.transport != nil
}

func (c *scopedClient) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *scopedClient) Scope() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scope
}

func (c *scopedClient) Send(v any) {
	c.mu.Lock()
	transport := c.transport
	open := c.state == StateOpen
	c.mu.Unlock()

	if !open || transport == nil {
		c.logger.Warnf("dropping outbound message: %s", ErrNotConnected)
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Errorf("cannot serialize outbound message: %s", err)
		return
	}

	if err := transport.WriteMessage(data); err != nil {
		c.logger.Warnf("dropping outbound message: %s", err)
	}
}

// teardownLocked is the intentional-close path shared by Disconnect and scope
// switches. Bumping the epoch is what suppresses reconnection: the read loop
// of the closed transport will observe a stale epoch and stand down.
func (c *scopedClient) teardownLocked() {
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}

	c.epoch++

	if c.transport != nil {
		_ = c.transport.Close()
		c.transport = nil
	}

	c.state = StateDisconnected
}

// dial resolves connection params, derives the endpoint for the current scope
// and opens the transport. On failure it schedules the next attempt under the
// reconnect policy, exactly as an unintentional close would.
func (c *scopedClient) dial(ctx context.Context, epoch uint64) error {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return nil
	}
	scope := c.scope
	c.mu.Unlock()

	params, err := c.params.Get(ctx)
	if err != nil {
		c.handleDialFailure(ctx, epoch, err)
		return err
	}

	endpoint := endpointURL(params.BaseURL, scope)

	transport, err := c.dialer(ctx, endpoint, handshakeHeader(params))

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		// Superseded by a Disconnect or scope switch while dialing.
		if transport != nil {
			_ = transport.Close()
		}
		return nil
	}

	if err != nil {
		from := c.state
		to := c.scheduleRetryLocked(ctx, epoch, err)
		c.mu.Unlock()
		c.notifyState(from, to)
		return err
	}

	connID := uuid.NewString()[:8]
	from := c.state
	c.transport = transport
	c.state = StateOpen
	c.attempts = 0
	c.delay = c.policy.InitialDelay
	c.mu.Unlock()

	log := c.logger.WithField("conn", connID)
	log.Infof("connection open for scope %q at %s", scope, endpoint.String())

	go c.readLoop(ctx, epoch, transport, log)
	if c.keepAliveEvery > 0 {
		go c.keepAlive(ctx, epoch, transport, log)
	}

	c.notifyState(from, StateOpen)
	return nil
}

// readLoop pumps inbound frames into the registry until the transport dies.
// Delivery order is transport order; dispatch is synchronous per frame.
func (c *scopedClient) readLoop(ctx context.Context, epoch uint64, transport Transport, log Logger) {
	for {
		data, err := transport.ReadMessage()
		if err != nil {
			log.Infof("connection closed: %s", err)
			c.handleClose(ctx, epoch, err)
			return
		}

		c.registry.Dispatch(data)
	}
}

// handleDialFailure schedules a retry for a dial that never produced a
// transport, unless the attempt was superseded meanwhile.
func (c *scopedClient) handleDialFailure(ctx context.Context, epoch uint64, cause error) {
	c.mu.Lock()

	if c.epoch != epoch {
		c.mu.Unlock()
		return
	}

	from := c.state
	to := c.scheduleRetryLocked(ctx, epoch, cause)
	c.mu.Unlock()

	c.notifyState(from, to)
}

// handleClose reacts to a transport failure. A stale epoch means the close
// was triggered by us and must not schedule anything.
func (c *scopedClient) handleClose(ctx context.Context, epoch uint64, cause error) {
	c.mu.Lock()

	if c.epoch != epoch {
		c.mu.Unlock()
		return
	}

	if c.transport != nil {
		_ = c.transport.Close()
		c.transport = nil
	}

	from := c.state
	to := c.scheduleRetryLocked(ctx, epoch, cause)
	c.mu.Unlock()

	c.notifyState(from, to)
}

// scheduleRetryLocked arms the backoff timer for the next attempt, or moves
// to Disconnected once the policy says stop. Returns the state it settled on.
// The epoch is re-checked when the timer fires so a Disconnect or scope
// switch in the meantime wins.
func (c *scopedClient) scheduleRetryLocked(ctx context.Context, epoch uint64, cause error) State {
	if !c.policy.ShouldRetry(false, c.attempts) {
		c.logger.Errorf("reconnect attempts exhausted after %d tries: %s", c.attempts, cause)
		c.state = StateDisconnected
		return c.state
	}

	delay := c.delay
	c.attempts++
	c.delay = c.policy.NextDelay(c.delay)
	c.state = StateReconnecting

	c.logger.Infof("retrying to connect in %s due to %s (attempt %d/%d)",
		delay, cause, c.attempts, c.policy.MaxAttempts)

	c.retryTimer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		if c.epoch != epoch || c.state != StateReconnecting {
			c.mu.Unlock()
			return
		}

		if ctx.Err() != nil {
			// A cancelled context ends the retry loop the same way
			// exhaustion does: parked in Disconnected until an explicit
			// Connect.
			from := c.state
			c.state = StateDisconnected
			c.mu.Unlock()
			c.logger.Warnf("reconnect abandoned: %s", ctx.Err())
			c.notifyState(from, StateDisconnected)
			return
		}
		c.mu.Unlock()

		_ = c.dial(ctx, epoch)
	})

	return c.state
}

// keepAlive periodically writes a ping frame while this epoch's connection is
// open. The backend answers with ack frames, which the registry consumes.
func (c *scopedClient) keepAlive(ctx context.Context, epoch uint64, transport Transport, log Logger) {
	ticker := time.NewTicker(c.keepAliveEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			stale := c.epoch != epoch || c.state != StateOpen
			c.mu.Unlock()
			if stale {
				return
			}

			if err := transport.WriteMessage(keepAliveFrame); err != nil {
				log.Debugf("keep-alive write failed: %s", err)
				return
			}
		}
	}
}

func (c *scopedClient) notifyState(from, to State) {
	if c.onState == nil || from == to {
		return
	}
	c.onState(from, to)
}
