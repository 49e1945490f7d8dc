// Package frame implements the JSON envelope exchanged over the Amino
// realtime socket. Every frame, in both directions, is a single text message:
//
//	{"t": <frame kind>, "o": <payload object>}
//
// The shape of "o" depends on "t"; see package wire for payload definitions.
package frame

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Inbound frame kinds.
const (
	TypeNotification    = 10
	TypeChannel         = 201
	TypeChatActionStart = 304
	TypeChatActionEnd   = 306
	TypeTopic           = 400
	TypeMessage         = 1000
)

// Outbound frame kinds.
const (
	TypeChannelSignal = 108 // video/channel join
	TypeVoiceRole     = 112 // voice chat role change
	TypePlaylist      = 120
	TypeSubscribe     = 300 // topic subscribe
	TypeStopAction    = 303
	TypeAction        = 306 // presence action, shares its code with TypeChatActionEnd
)

var (
	ErrMalformed = errors.New("frame: malformed envelope")
	ErrNoType    = errors.New("frame: missing t")
	ErrNoPayload = errors.New("frame: missing o")
)

// Frame is a decoded envelope. Payload stays raw until a handler decides
// what it is.
type Frame struct {
	Type    int             `json:"t"`
	Payload json.RawMessage `json:"o"`
}

// Outbound is an envelope with a typed payload, ready to marshal.
type Outbound struct {
	Type    int `json:"t"`
	Payload any `json:"o"`
}

// Encode marshals payload under kind typ.
func Encode(typ int, payload any) ([]byte, error) {
	return json.Marshal(Outbound{Type: typ, Payload: payload})
}

// Decode parses data into a Frame. A missing "t" or "o" is an error; the
// payload itself is not inspected.
func Decode(data []byte) (Frame, error) {
	var raw struct {
		Type    *int            `json:"t"`
		Payload json.RawMessage `json:"o"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw.Type == nil {
		return Frame{}, ErrNoType
	}
	if len(raw.Payload) == 0 || string(raw.Payload) == "null" {
		return Frame{Type: *raw.Type}, ErrNoPayload
	}
	return Frame{Type: *raw.Type, Payload: raw.Payload}, nil
}

// Field extracts a nested value from the payload by key path. It reports
// false when any key along the path is missing or the payload is not an
// object at that depth.
func (f Frame) Field(path ...string) (json.RawMessage, bool) {
	cur := f.Payload
	for _, key := range path {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(cur, &obj); err != nil {
			return nil, false
		}
		next, ok := obj[key]
		if !ok || string(next) == "null" {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// String extracts a nested string or number as text. Strings are unquoted,
// numbers keep their literal form.
func (f Frame) String(path ...string) (string, bool) {
	raw, ok := f.Field(path...)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}
