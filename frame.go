package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// FrameType is the discriminator carried in the "type" field of every inbound
// frame.
type FrameType string

const (
	// FrameAck acknowledges an outbound message. Consumed, never dispatched.
	FrameAck FrameType = "ack"
	// FrameEvent carries a server-pushed notification. The "event" field
	// selects the subscriber set; all remaining fields are payload.
	FrameEvent FrameType = "event"
)

func (t FrameType) Is(other FrameType) bool {
	return t == other
}

func (t FrameType) IsAck() bool {
	return t.Is(FrameAck)
}

func (t FrameType) IsEvent() bool {
	return t.Is(FrameEvent)
}

// Frame is one inbound envelope. It keeps the raw bytes so handlers can decode
// the payload fields the envelope does not model.
type Frame struct {
	frameType FrameType
	event     string
	raw       []byte
}

func (f Frame) Type() FrameType { return f.frameType }

// Event returns the event-type string of an event frame, empty otherwise.
func (f Frame) Event() string { return f.event }

// Data returns the full frame bytes as received from the transport.
func (f Frame) Data() []byte { return f.raw }

// Decode unmarshals the full frame, payload fields included, into v.
func (f Frame) Decode(v any) error {
	return json.Unmarshal(f.raw, v)
}

func (f Frame) String() string {
	return fmt.Sprintf("Frame{type=%s,event=%s,data=%s}",
		f.frameType, f.event, f.raw)
}

// ParseFrame validates the envelope of a raw inbound frame. The payload body
// is not validated beyond being part of a well-formed JSON object.
func ParseFrame(raw []byte) (Frame, error) {
	var head struct {
		Type  FrameType `json:"type"`
		Event string    `json:"event"`
	}

	if err := json.Unmarshal(raw, &head); err != nil {
		return Frame{}, errors.Wrap(ErrMalformedFrame, err.Error())
	}

	if head.Type == "" {
		return Frame{}, errors.Wrap(ErrMalformedFrame, "missing type discriminator")
	}

	if head.Type.IsEvent() && head.Event == "" {
		return Frame{}, errors.Wrap(ErrMalformedFrame, "event frame without event name")
	}

	return Frame{frameType: head.Type, event: head.Event, raw: raw}, nil
}
