package realtime

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		scope    string
		expected string
	}{
		{
			name:     "http becomes ws",
			base:     "http://api.example.com",
			scope:    "project-a",
			expected: "ws://api.example.com/ws/project-a",
		},
		{
			name:     "https becomes wss",
			base:     "https://api.example.com",
			scope:    "project-a",
			expected: "wss://api.example.com/ws/project-a",
		},
		{
			name:     "trailing slash collapses",
			base:     "https://api.example.com/v1/",
			scope:    "p1",
			expected: "wss://api.example.com/v1/ws/p1",
		},
		{
			name:     "socket scheme untouched",
			base:     "wss://api.example.com",
			scope:    "p1",
			expected: "wss://api.example.com/ws/p1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, err := url.Parse(tt.base)
			assert.NoError(t, err)

			endpoint := endpointURL(*base, tt.scope)
			assert.Equal(t, tt.expected, endpoint.String())
		})
	}
}

func TestHandshakeHeaderWithToken(t *testing.T) {
	header := handshakeHeader(ConnectionParams{Token: "secret"})

	assert.Equal(t, "Bearer secret", header.Get("Authorization"))
}

func TestHandshakeHeaderWithoutToken(t *testing.T) {
	header := handshakeHeader(ConnectionParams{})

	assert.Empty(t, header.Get("Authorization"))
}
