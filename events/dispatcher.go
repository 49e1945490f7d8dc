package events

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/k-amino/amino-go/frame"
	"github.com/k-amino/amino-go/wire"
)

// MessageHook observes every chat message event before its handlers run.
// The bot command trigger is installed here.
type MessageHook func(name string, ev *wire.Event)

// Dispatcher turns raw frames into typed events on a Registry. Dispatch runs
// on the caller's goroutine, so a slow handler delays the next frame.
type Dispatcher struct {
	reg    *Registry
	dedup  *frame.DedupWindow
	onMsg  MessageHook
	log    *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDedup drops chat messages whose messageId was seen within the window.
func WithDedup(w *frame.DedupWindow) DispatcherOption {
	return func(d *Dispatcher) { d.dedup = w }
}

// WithMessageHook installs fn for chat message events.
func WithMessageHook(fn MessageHook) DispatcherOption {
	return func(d *Dispatcher) { d.onMsg = fn }
}

// WithLogger sets the dispatcher's logger.
func WithLogger(log *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// NewDispatcher returns a Dispatcher emitting on reg.
func NewDispatcher(reg *Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{reg: reg, log: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type shape int

const (
	shapeEvent shape = iota
	shapePayload
	shapeActions
)

type route struct {
	name  string
	shape shape
}

// Dispatch routes one raw frame and returns the event name it was emitted
// under, or "" when the frame was suppressed as a duplicate. It never
// panics on malformed input.
func (d *Dispatcher) Dispatch(data []byte) string {
	if d.dedup != nil && d.isDuplicate(data) {
		d.log.Debug("events: duplicate message dropped")
		return ""
	}

	name, value, err := resolveFrame(data)
	if err != nil {
		d.log.Debug("events: payload partly decoded", "event", name, "error", err)
	}
	if ev, ok := value.(*wire.Event); ok && d.onMsg != nil {
		d.runMessageHook(name, ev)
	}
	n := d.reg.Emit(name, value)
	d.log.Debug("events: dispatched", "event", name, "handlers", n)
	return name
}

func (d *Dispatcher) isDuplicate(data []byte) bool {
	f, err := frame.Decode(data)
	if err != nil || f.Type != frame.TypeMessage {
		return false
	}
	id, _ := f.String("chatMessage", "messageId")
	return d.dedup.IsDuplicate(id)
}

func (d *Dispatcher) runMessageHook(name string, ev *wire.Event) {
	defer func() {
		if p := recover(); p != nil {
			d.log.Warn("events: message hook panic", "event", name, "panic", p)
		}
	}()
	d.onMsg(name, ev)
}

// Resolve maps a raw frame to its event name and typed value: *wire.Event,
// *wire.Payload or *wire.UsersActions. Frames that match no table entry
// resolve to Default with the raw bytes as a json.RawMessage. A routed
// frame with a field of an unexpected JSON type keeps its name; the field
// is left at its zero value.
func Resolve(data []byte) (string, any) {
	name, value, _ := resolveFrame(data)
	return name, value
}

// resolveFrame is Resolve plus the error of a partial payload decode.
func resolveFrame(data []byte) (string, any, error) {
	fallback := json.RawMessage(data)

	f, err := frame.Decode(data)
	if err != nil {
		return Default, fallback, nil
	}
	r, ok := resolve(f)
	if !ok {
		return Default, fallback, nil
	}
	value, err := decode(f, r.shape)
	if value == nil {
		return Default, fallback, nil
	}
	return r.name, value, err
}

func resolve(f frame.Frame) (route, bool) {
	switch f.Type {
	case frame.TypeNotification:
		key, ok := f.String("payload", "notifType")
		if !ok {
			return route{}, false
		}
		name, ok := notificationEvents[key]
		return route{name, shapePayload}, ok

	case frame.TypeChannel:
		return route{chatActionEvents["fetch-channel"], shapePayload}, true

	case frame.TypeChatActionStart, frame.TypeChatActionEnd:
		raw, ok := f.Field("actions")
		if !ok {
			return route{}, false
		}
		var actions wire.Actions
		if err := json.Unmarshal(raw, &actions); err != nil {
			return route{}, false
		}
		suffix := "-start"
		if f.Type == frame.TypeChatActionEnd {
			suffix = "-end"
		}
		name, ok := chatActionEvents[actions.First()+suffix]
		return route{name, shapeActions}, ok

	case frame.TypeTopic:
		topic, ok := f.String("topic")
		if !ok {
			return route{}, false
		}
		parts := strings.Split(topic, ":")
		if len(parts) < 3 {
			return route{}, false
		}
		name, ok := topicEvents[parts[2]]
		return route{name, shapeActions}, ok

	case frame.TypeMessage:
		typ, ok := f.String("chatMessage", "type")
		if !ok {
			return route{}, false
		}
		media, ok := f.String("chatMessage", "mediaType")
		if !ok || media == "" {
			media = "0"
		}
		name, ok := chatMessageEvents[typ+":"+media]
		return route{name, shapeEvent}, ok
	}
	return route{}, false
}

// decode returns the typed payload. encoding/json completes a decode past
// type mismatches, so on such an error the value is still returned with
// every other field set.
func decode(f frame.Frame, s shape) (any, error) {
	switch s {
	case shapePayload:
		raw, ok := f.Field("payload")
		if !ok {
			return nil, frame.ErrNoPayload
		}
		p := &wire.Payload{Raw: raw}
		return p, json.Unmarshal(raw, p)

	case shapeActions:
		ua := &wire.UsersActions{Raw: f.Payload}
		return ua, json.Unmarshal(f.Payload, ua)

	default:
		ev := &wire.Event{Raw: f.Payload}
		return ev, json.Unmarshal(f.Payload, ev)
	}
}
