package realtime

import (
	"reflect"
	"sync"
)

// EventHandler receives every frame dispatched for the event type it was
// registered under. Handlers run synchronously, in registration order, on the
// goroutine that read the frame.
type EventHandler func(Frame)

type handlerEntry struct {
	fn EventHandler
	// key is the handler's function pointer; registration, de-duplication and
	// removal are by reference identity, never by value.
	key uintptr
}

// Registry maps an event-type string to the set of handlers currently
// subscribed to it and fans every inbound event frame out to them. It holds
// handlers by reference only and has no connection-lifecycle state of its own.
type Registry struct {
	logger Logger

	mu       sync.RWMutex
	handlers map[string][]handlerEntry
}

func NewRegistry(logger Logger) *Registry {
	return &Registry{
		logger:   logger.WithField("type", "registry"),
		handlers: make(map[string][]handlerEntry),
	}
}

func handlerKey(h EventHandler) uintptr {
	return reflect.ValueOf(h).Pointer()
}

// On registers handler under eventType. Registering the identical reference
// twice under the same type is a no-op, so a single frame never invokes the
// same handler twice.
func (r *Registry) On(eventType string, handler EventHandler) {
	if handler == nil {
		return
	}

	key := handlerKey(handler)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range r.handlers[eventType] {
		if entry.key == key {
			return
		}
	}

	r.handlers[eventType] = append(r.handlers[eventType], handlerEntry{
		fn:  handler,
		key: key,
	})
}

// Off removes exactly that handler reference from eventType's set. When the
// set becomes empty its map entry is dropped so churned event types do not
// accumulate.
func (r *Registry) Off(eventType string, handler EventHandler) {
	if handler == nil {
		return
	}

	key := handlerKey(handler)

	r.mu.Lock()
	defer r.mu.Unlock()

	entries, found := r.handlers[eventType]
	if !found {
		return
	}

	for i, entry := range entries {
		if entry.key == key {
			entries = append(entries[:i], entries[i+1:]...)
			break
		}
	}

	if len(entries) == 0 {
		delete(r.handlers, eventType)
		return
	}
	r.handlers[eventType] = entries
}

// Dispatch parses one raw inbound frame and routes it. Malformed frames are
// logged and dropped, ack frames are consumed, and event frames reach every
// handler registered for the exact event string at dispatch time. No failure
// path escapes to the caller, so a bad frame or a bad handler never tears the
// session down.
func (r *Registry) Dispatch(raw []byte) {
	frame, err := ParseFrame(raw)
	if err != nil {
		r.logger.Warnf("dropping frame: %s", err)
		return
	}

	switch {
	case frame.Type().IsAck():
		r.logger.Debugln("<= [ACK]")
	case frame.Type().IsEvent():
		r.dispatchEvent(frame)
	default:
		r.logger.Debugf("ignoring frame of unknown type %q", frame.Type())
	}
}

func (r *Registry) dispatchEvent(frame Frame) {
	r.mu.RLock()
	entries := r.handlers[frame.Event()]
	// Snapshot so handlers may subscribe or unsubscribe mid-dispatch without
	// affecting the current fan-out.
	snapshot := make([]handlerEntry, len(entries))
	copy(snapshot, entries)
	r.mu.RUnlock()

	if len(snapshot) == 0 {
		r.logger.Debugf("no subscribers for event %q, dropping", frame.Event())
		return
	}

	for _, entry := range snapshot {
		r.invoke(entry.fn, frame)
	}
}

// invoke isolates one handler call: a panic is recovered and logged so the
// remaining handlers for this frame still run.
func (r *Registry) invoke(handler EventHandler, frame Frame) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Errorf("event handler for %q panicked: %v", frame.Event(), rec)
		}
	}()

	handler(frame)
}

// Len reports how many handlers are registered for eventType.
func (r *Registry) Len(eventType string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[eventType])
}

// Close removes all handlers to prevent memory leaks.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers = make(map[string][]handlerEntry)
}
