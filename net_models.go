package realtime

import (
	"context"
	"net/http"
	"net/url"
)

type (
	// Transport is one live message-oriented full-duplex connection.
	Transport interface {
		// ReadMessage blocks until the next inbound frame arrives or the
		// connection dies, in which case it returns a non-nil error forever
		// after.
		ReadMessage() ([]byte, error)
		// WriteMessage transmits one outbound frame.
		WriteMessage(data []byte) error
		Close() error
	}

	// Dialer opens a Transport to the given endpoint. Injectable so tests can
	// run the full connection lifecycle without a real socket.
	Dialer func(ctx context.Context, endpoint url.URL, header http.Header) (Transport, error)
)
