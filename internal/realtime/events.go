package realtime

import "encoding/json"

// Wire event names. Inbound names match what chat clients emit; outbound
// names are what they listen for.
const (
	EventSetup      = "setup"
	EventJoinChat   = "join chat"
	EventTyping     = "typing"
	EventStopTyping = "stop typing"
	EventNewMessage = "new message"

	EventConnected       = "connected"
	EventMessageReceived = "message received"
)

// Frame is the JSON envelope every push-channel event travels in.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// SetupData identifies the user behind a connection.
type SetupData struct {
	UserID string `json:"userId"`
}

// SenderRef identifies the author of a message event.
type SenderRef struct {
	ID string `json:"id"`
}

// ChatRef carries the chat's complete member set, attached to the event
// by the sender. The dispatcher never queries storage for it.
type ChatRef struct {
	ID      string   `json:"id"`
	Members []string `json:"members"`
}

// MessageData is the slice of a persisted message the dispatcher needs
// for fan-out. The full message object is re-broadcast untouched.
type MessageData struct {
	Sender SenderRef `json:"sender"`
	Chat   ChatRef   `json:"chat"`
}

func encodeFrame(event string, data any) []byte {
	var raw json.RawMessage
	switch d := data.(type) {
	case nil:
	case json.RawMessage:
		raw = d
	default:
		raw, _ = json.Marshal(d)
	}
	payload, _ := json.Marshal(Frame{Event: event, Data: raw})
	return payload
}
