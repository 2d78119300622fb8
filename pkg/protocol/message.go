// Package protocol defines the wire messages exchanged between the browser
// client and the live page server, and the codecs that frame them.
package protocol

import (
	"fmt"
	"strconv"
	"time"
)

// MessageType identifies the type of protocol message.
type MessageType uint8

const (
	// MsgEvent is sent for user interactions.
	MsgEvent MessageType = iota
	// MsgJoin is sent when a client joins a channel.
	MsgJoin
	// MsgLeave is sent when a client leaves a channel.
	MsgLeave
	// MsgReply is sent as a response to a request.
	MsgReply
	// MsgDiff is sent when component state changes.
	MsgDiff
	// MsgError is sent when an error occurs.
	MsgError
	// MsgHeartbeat is sent for connection keepalive.
	MsgHeartbeat
)

// String returns a string representation of the message type.
func (mt MessageType) String() string {
	switch mt {
	case MsgJoin:
		return "join"
	case MsgLeave:
		return "leave"
	case MsgEvent:
		return "event"
	case MsgReply:
		return "reply"
	case MsgDiff:
		return "diff"
	case MsgError:
		return "error"
	case MsgHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Reserved event names.
const (
	EventJoin      = "phx_join"
	EventLeave     = "phx_leave"
	EventReply     = "phx_reply"
	EventError     = "phx_error"
	EventHeartbeat = "heartbeat"
	EventDiff      = "diff"
)

// Message represents a protocol message exchanged between client and server.
type Message struct {
	// Type is derived from Event on decode and never trusted from the wire.
	Type MessageType `json:"-" msgpack:"-"`

	// Ref is a correlation ID for request/response matching
	Ref string `json:"ref,omitempty" msgpack:"ref,omitempty"`

	// JoinRef is the ref of the join that opened the channel
	JoinRef string `json:"join_ref,omitempty" msgpack:"join_ref,omitempty"`

	// Topic is the channel this message belongs to (e.g., "lv:socket-id")
	Topic string `json:"topic" msgpack:"topic"`

	// Event is the specific event name (e.g., "lightbox:next")
	Event string `json:"event" msgpack:"event"`

	Payload map[string]any `json:"payload,omitempty" msgpack:"payload,omitempty"`

	// Timestamp in Unix milliseconds
	Timestamp int64 `json:"ts,omitempty" msgpack:"ts,omitempty"`
}

// NewMessage creates a new message stamped with the current time.
func NewMessage(topic, event string, payload map[string]any) *Message {
	if payload == nil {
		payload = make(map[string]any)
	}
	return &Message{
		Type:      TypeOf(event),
		Topic:     topic,
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}

// WithRef adds a reference ID to the message.
func (m *Message) WithRef(ref string) *Message {
	m.Ref = ref
	return m
}

// WithJoinRef sets the join reference.
func (m *Message) WithJoinRef(joinRef string) *Message {
	m.JoinRef = joinRef
	return m
}

// String returns a value from the payload formatted as a string.
// Numbers and booleans are converted so form inputs decode uniformly.
func (m *Message) String(key string) string {
	if m.Payload == nil {
		return ""
	}
	switch v := m.Payload[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Int retrieves an integer from the payload. JSON numbers arrive as
// float64 and msgpack picks the smallest integer width.
func (m *Message) Int(key string) (int, bool) {
	if m.Payload == nil {
		return 0, false
	}
	return ToInt(m.Payload[key])
}

// ToInt converts a decoded wire number to int.
func ToInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}

// IsHeartbeat returns true if this is a heartbeat message.
func (m *Message) IsHeartbeat() bool {
	return m.Type == MsgHeartbeat
}

// TypeOf maps event names to message types.
func TypeOf(event string) MessageType {
	switch event {
	case EventJoin:
		return MsgJoin
	case EventLeave:
		return MsgLeave
	case EventReply:
		return MsgReply
	case EventError:
		return MsgError
	case EventHeartbeat:
		return MsgHeartbeat
	case EventDiff:
		return MsgDiff
	default:
		return MsgEvent
	}
}

// ReplyMessage creates a reply message.
func ReplyMessage(ref, topic, status string, response map[string]any) *Message {
	if response == nil {
		response = map[string]any{}
	}
	return NewMessage(topic, EventReply, map[string]any{
		"status":   status,
		"response": response,
	}).WithRef(ref)
}

// OkReply creates a successful reply message.
func OkReply(ref, topic string, response map[string]any) *Message {
	return ReplyMessage(ref, topic, "ok", response)
}

// ErrorReply creates an error reply message.
func ErrorReply(ref, topic, reason string) *Message {
	return ReplyMessage(ref, topic, "error", map[string]any{"reason": reason})
}

// DiffMessage creates a diff push.
func DiffMessage(topic string, diff map[string]any) *Message {
	return NewMessage(topic, EventDiff, diff)
}

// EventMessage creates a client event, mostly useful in tests.
func EventMessage(topic, event string, payload map[string]any) *Message {
	return NewMessage(topic, event, payload)
}
