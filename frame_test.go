package realtime

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrameAck(t *testing.T) {
	frame, err := ParseFrame([]byte(`{"type":"ack"}`))

	require.NoError(t, err)
	assert.True(t, frame.Type().IsAck())
	assert.Empty(t, frame.Event())
}

func TestParseFrameEvent(t *testing.T) {
	raw := []byte(`{"type":"event","event":"trace.created","trace_id":"abc"}`)

	frame, err := ParseFrame(raw)

	require.NoError(t, err)
	assert.True(t, frame.Type().IsEvent())
	assert.Equal(t, "trace.created", frame.Event())
	assert.Equal(t, raw, frame.Data())

	var payload struct {
		TraceID string `json:"trace_id"`
	}
	require.NoError(t, frame.Decode(&payload))
	assert.Equal(t, "abc", payload.TraceID)
}

func TestParseFrameMalformed(t *testing.T) {
	_, err := ParseFrame([]byte(`this is not json`))

	assert.True(t, errors.Is(err, ErrMalformedFrame))
}

func TestParseFrameMissingType(t *testing.T) {
	_, err := ParseFrame([]byte(`{"event":"trace.created"}`))

	assert.True(t, errors.Is(err, ErrMalformedFrame))
}

func TestParseFrameEventWithoutName(t *testing.T) {
	_, err := ParseFrame([]byte(`{"type":"event"}`))

	assert.True(t, errors.Is(err, ErrMalformedFrame))
}
