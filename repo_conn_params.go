package realtime

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

type (
	// ConnectionParams is what the surrounding application must supply to open
	// a socket: the REST API base URL the endpoint is derived from and an
	// optional bearer token for the handshake.
	ConnectionParams struct {
		BaseURL url.URL
		Token   string
	}

	ConnectionParamsGetter func(ctx context.Context) (ConnectionParams, error)

	ConnectionParamsRepo struct {
		logger Logger
		getter ConnectionParamsGetter
	}
)

func (r ConnectionParamsRepo) Get(
	ctx context.Context,
) (params ConnectionParams, err error) {
	params, err = r.getter(ctx)
	if err != nil {
		r.logger.Errorf("cannot fetch connection params: %s", err)
	}
	return
}

func NewConnectionParamsRepo(
	logger Logger,
	getter ConnectionParamsGetter,
) ConnectionParamsRepo {
	return ConnectionParamsRepo{getter: getter, logger: logger}
}

// endpointURL derives the socket endpoint for a scope from the REST base URL:
// the scheme is swapped to its socket equivalent and "/ws/{scope}" is appended
// to the base path. An already socket-schemed base is left as is.
func endpointURL(base url.URL, scope string) url.URL {
	switch base.Scheme {
	case "https":
		base.Scheme = "wss"
	case "http":
		base.Scheme = "ws"
	}
	base.Path = strings.TrimRight(base.Path, "/") + "/ws/" + scope
	return base
}

func handshakeHeader(params ConnectionParams) http.Header {
	header := http.Header{}
	if params.Token != "" {
		header.Set("Authorization", "Bearer "+params.Token)
	}
	return header
}
