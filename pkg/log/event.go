package log

import (
	"time"
)

// Event is a single captured occurrence at some layer of the stack.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID identifies the provisioning connection (UUID).
	// Empty for link events.
	ConnectionID string `cbor:"2,keyasint,omitempty"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the peer address (IP:port).
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"` // Transport layer
	Message     *MessageEvent     `cbor:"11,keyasint,omitempty"` // Session layer
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Lifecycle
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"` // Failures
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates data received from the peer.
	DirectionIn Direction = 0
	// DirectionOut indicates data sent to the peer.
	DirectionOut Direction = 1
	// DirectionNone is used for events with no flow, such as state changes.
	DirectionNone Direction = 2
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	case DirectionNone:
		return "-"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which part of the stack captured the event.
type Layer uint8

const (
	// LayerTransport is the TCP byte stream.
	LayerTransport Layer = 0
	// LayerSession is the name/secret exchange.
	LayerSession Layer = 1
	// LayerLink is the station uplink managed by the connection manager.
	LayerLink Layer = 2
	// LayerStorage is the credential store.
	LayerStorage Layer = 3
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerSession:
		return "SESSION"
	case LayerLink:
		return "LINK"
	case LayerStorage:
		return "STORAGE"
	default:
		return "UNKNOWN"
	}
}

// ParseLayer returns the layer for a name produced by Layer.String.
func ParseLayer(s string) (Layer, bool) {
	for l := LayerTransport; l <= LayerStorage; l++ {
		if l.String() == s {
			return l, true
		}
	}
	return 0, false
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates data exchanged with a peer.
	CategoryMessage Category = 0
	// CategoryState indicates a lifecycle transition.
	CategoryState Category = 1
	// CategoryError indicates a failure.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory returns the category for a name produced by Category.String.
func ParseCategory(s string) (Category, bool) {
	for c := CategoryMessage; c <= CategoryError; c++ {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

// FrameEvent records a raw read or write on the provisioning socket.
// Payload bytes are not kept since they may contain a secret.
type FrameEvent struct {
	// Size is the number of bytes read or written.
	Size int `cbor:"1,keyasint"`

	// Truncated indicates the read filled the receive buffer.
	Truncated bool `cbor:"2,keyasint,omitempty"`
}

// MessageEvent records a classified provisioning message.
type MessageEvent struct {
	// Kind classifies the message.
	Kind MessageKind `cbor:"1,keyasint"`

	// Phase is the session phase the message was handled in.
	Phase string `cbor:"2,keyasint,omitempty"`

	// Name is the extracted network name, if any.
	Name string `cbor:"3,keyasint,omitempty"`

	// Secret is the redacted secret, if any.
	Secret string `cbor:"4,keyasint,omitempty"`

	// Text is the response text for outbound messages.
	Text string `cbor:"5,keyasint,omitempty"`
}

// MessageKind classifies provisioning messages.
type MessageKind uint8

const (
	// MessageKindName is a submission carrying the network name.
	MessageKindName MessageKind = 0
	// MessageKindSecret is a submission carrying the network secret.
	MessageKindSecret MessageKind = 1
	// MessageKindMalformed is a submission with no usable field.
	MessageKindMalformed MessageKind = 2
	// MessageKindResponse is text sent back to the peer.
	MessageKindResponse MessageKind = 3
	// MessageKindDropped is a submission discarded while waiting on the rate
	// limiter at shutdown.
	MessageKindDropped MessageKind = 4
)

// String returns the message kind name.
func (k MessageKind) String() string {
	switch k {
	case MessageKindName:
		return "NAME"
	case MessageKindSecret:
		return "SECRET"
	case MessageKindMalformed:
		return "MALFORMED"
	case MessageKindResponse:
		return "RESPONSE"
	case MessageKindDropped:
		return "DROPPED"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures lifecycle transitions.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityLink indicates a station uplink state change.
	StateEntityLink StateEntity = 0
	// StateEntitySession indicates a provisioning session state change.
	StateEntitySession StateEntity = 1
	// StateEntityServer indicates a provisioning server state change.
	StateEntityServer StateEntity = 2
	// StateEntityDevice indicates a boot-level mode change.
	StateEntityDevice StateEntity = 3
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityLink:
		return "LINK"
	case StateEntitySession:
		return "SESSION"
	case StateEntityServer:
		return "SERVER"
	case StateEntityDevice:
		return "DEVICE"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures failures at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
