package realtime

import (
	"fmt"
	"net/url"

	"github.com/pkg/errors"
)

var (
	ErrConnectionClosed = errors.New("connection has been closed")
	ErrCannotConnect    = errors.New("connection cannot be established")
	ErrNotConnected     = errors.New("no open connection")
	ErrMalformedFrame   = errors.New("malformed frame")
	ErrRateLimit        = errors.New("rate limit exceeded")
)

// DialError reports a failed handshake together with the endpoint it targeted.
type DialError struct {
	err error
	url url.URL
}

func (e *DialError) Error() string {
	return fmt.Sprintf("dial %s: %s", e.url.String(), e.err)
}

func (e *DialError) Unwrap() error { return e.err }

func WrapDialError(err error, url url.URL) *DialError {
	if err == nil {
		return nil
	}
	return &DialError{
		err: err,
		url: url,
	}
}
