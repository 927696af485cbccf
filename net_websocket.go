package realtime

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/fasthttp/websocket"
)

const wsWriteTimeout = 5 * time.Second

// wsTransport adapts a websocket connection to the Transport interface.
// Control frames are handled by the underlying library; only text and binary
// frames surface through ReadMessage.
type wsTransport struct {
	logger  Logger
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewWebsocketDialer returns the production Dialer, built on the given
// websocket dialer. A nil dialer falls back to the library default.
func NewWebsocketDialer(logger Logger, dialer *websocket.Dialer) Dialer {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	log := logger.WithField("net", "ws_transport")

	return func(ctx context.Context, endpoint url.URL, header http.Header) (Transport, error) {
		conn, resp, err := dialer.DialContext(ctx, endpoint.String(), header)
		if err = handleDialError(resp, err); err != nil {
			log.Errorf("connection err to %s: %s", endpoint.String(), err)
			return nil, WrapDialError(err, endpoint)
		}

		log.Debugf("success opening connection to %s", endpoint.String())

		return &wsTransport{logger: log, conn: conn}, nil
	}
}

func (w *wsTransport) ReadMessage() ([]byte, error) {
	for {
		messageType, bts, err := w.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
			) {
				return nil, ErrConnectionClosed
			}
			return nil, errors.Wrap(ErrConnectionClosed, err.Error())
		}

		// message types from ReadMessage are either binary or text
		switch messageType {
		case websocket.BinaryMessage:
			w.logger.Debugln("<= [BIN]")
			return bts, nil
		case websocket.TextMessage:
			w.logger.Debugf("<= [DATA] %s", string(bts))
			return bts, nil
		}
	}
}

func (w *wsTransport) WriteMessage(data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))

	w.logger.Debugf("=> [DATA] %s", data)
	if err := w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.Wrap(ErrConnectionClosed, err.Error())
	}
	return nil
}

func (w *wsTransport) Close() error {
	deadline := time.Now().Add(time.Second)
	_ = w.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		deadline,
	)
	return w.conn.Close()
}

func handleDialError(resp *http.Response, err error) error {
	// 1. Check HTTP errors first
	var msg string

	if resp != nil {
		if resp.Body != nil {
			bts, readErr := io.ReadAll(resp.Body)
			if readErr == nil {
				msg = string(bts)
			}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return errors.Wrap(ErrRateLimit, msg)
		}
	}

	// 2. Network errors
	if err != nil {
		return errors.Wrap(ErrCannotConnect, err.Error())
	}

	return nil
}
