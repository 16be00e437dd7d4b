package connection

import (
	"encoding/json"
	"errors"
	"time"
)

// Errors
var (
	ErrAlreadyClosed     = errors.New("already closed")
	ErrConnectionDropped = errors.New("connection dropped")
	ErrAuthentication    = errors.New("authentication rejected")
	ErrInvalidSubscriber = errors.New("invalid subscriber")
)

// UpdateType is the Rtype of a snapshot update frame.
const UpdateType = "Update"

// DefaultWSURL is the production streaming endpoint.
const DefaultWSURL = "ws://adv.vi-o.tech/ws"

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// Envelope is the outer shape of every stream frame.
type Envelope struct {
	Rtype    string          `json:"Rtype"`
	DataType json.RawMessage `json:"DataType"`
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL              string        // WebSocket URL (e.g., ws://adv.vi-o.tech/ws)
	HandshakeTimeout time.Duration // Dial + upgrade deadline
	PingInterval     time.Duration // Client ping period (0 = no pings)
	ReadTimeout      time.Duration // Max silence before the connection is dropped (0 = none)
	WriteTimeout     time.Duration // Write deadline for control frames
	BufferSize       int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		URL:              DefaultWSURL,
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     30 * time.Second,
		ReadTimeout:      90 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       64,
	}
}

// ListenerConfig configures a Listener.
type ListenerConfig struct {
	Client ClientConfig

	// DispatchConcurrency caps how many subscribers run at once for one
	// update. Zero means no limit.
	DispatchConcurrency int
}

// DefaultListenerConfig returns sensible defaults.
func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		Client: DefaultClientConfig(),
	}
}

// State is the Listener lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateReconnecting
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateReconnecting:
		return "reconnecting"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Stats provides statistics about a Listener.
type Stats struct {
	State            State
	Subscribers      int
	Connects         int64 // successful handshakes
	Reconnects       int64 // drops and failed dials followed by a retry
	Updates          int64 // Update frames decoded into snapshots
	Ignored          int64 // frames with another Rtype
	ParseErrors      int64 // frames that could not be decoded or built
	Duplicates       int64 // snapshots skipped because their id was already delivered
	SubscriberErrors int64 // subscriber errors and panics
}
