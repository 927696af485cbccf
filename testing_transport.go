package realtime

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
)

// fakeTransport is an in-memory Transport for exercising the full connection
// lifecycle without a socket. push feeds inbound frames to the read loop and
// fail simulates a remote drop.
type fakeTransport struct {
	recv      chan []byte
	closeC    chan struct{}
	closeOnce sync.Once

	mu   sync.Mutex
	sent [][]byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		recv:   make(chan []byte, 16),
		closeC: make(chan struct{}),
	}
}

func (t *fakeTransport) ReadMessage() ([]byte, error) {
	select {
	case data := <-t.recv:
		return data, nil
	case <-t.closeC:
		return nil, ErrConnectionClosed
	}
}

func (t *fakeTransport) WriteMessage(data []byte) error {
	select {
	case <-t.closeC:
		return ErrConnectionClosed
	default:
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, data)
	return nil
}

func (t *fakeTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.closeC)
	})
	return nil
}

func (t *fakeTransport) push(data []byte) {
	t.recv <- data
}

// fail drops the connection as if the remote or the network killed it.
func (t *fakeTransport) fail() {
	t.Close()
}

func (t *fakeTransport) isClosed() bool {
	select {
	case <-t.closeC:
		return true
	default:
		return false
	}
}

func (t *fakeTransport) sentMessages() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([][]byte, len(t.sent))
	copy(out, t.sent)
	return out
}

// fakeDialer records every dial and hands out fakeTransports. failAll or a
// positive failNext make dials fail with ErrCannotConnect.
type fakeDialer struct {
	mu         sync.Mutex
	transports []*fakeTransport
	endpoints  []url.URL
	headers    []http.Header
	failNext   int
	failAll    bool
}

func (d *fakeDialer) dial(_ context.Context, endpoint url.URL, header http.Header) (Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.endpoints = append(d.endpoints, endpoint)
	d.headers = append(d.headers, header)

	if d.failAll || d.failNext > 0 {
		if d.failNext > 0 {
			d.failNext--
		}
		return nil, errors.Wrap(ErrCannotConnect, "dial refused")
	}

	transport := newFakeTransport()
	d.transports = append(d.transports, transport)
	return transport, nil
}

func (d *fakeDialer) failFrom(now bool) {
	d.mu.Lock()
	d.failAll = now
	d.mu.Unlock()
}

func (d *fakeDialer) dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.endpoints)
}

func (d *fakeDialer) lastTransport() *fakeTransport {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.transports) == 0 {
		return nil
	}
	return d.transports[len(d.transports)-1]
}

func (d *fakeDialer) lastEndpoint() url.URL {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.endpoints) == 0 {
		return url.URL{}
	}
	return d.endpoints[len(d.endpoints)-1]
}

func (d *fakeDialer) lastHeader() http.Header {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.headers) == 0 {
		return nil
	}
	return d.headers[len(d.headers)-1]
}

type mockParamsGetter struct {
	mock.Mock
}

func (m *mockParamsGetter) Get(ctx context.Context) (ConnectionParams, error) {
	args := m.Called(ctx)
	return args.Get(0).(ConnectionParams), args.Error(1)
}
