package core

import (
	"log/slog"
	"time"
)

// ActorID represents a unique identifier for an Actor.
type ActorID uint32

// MessageType defines the category of a message.
type MessageType uint8

// Message is the unit of communication with an Actor.
type Message struct {
	// ID is assigned by the receiving actor when the message is accepted
	ID uint64

	// Type indicates the message category
	Type MessageType

	// Source is the ID of the sending Actor, zero for external callers
	Source ActorID

	// Target is the ID of the receiving Actor
	Target ActorID

	// Session correlates a Call with its response; zero for Send
	Session uint32

	// Payload is the typed command carried by the message
	Payload interface{}

	// Err is set on error responses
	Err error

	// Timestamp when the message was created
	Timestamp time.Time
}

// NewMessage builds a request message carrying payload.
func NewMessage(target ActorID, payload interface{}) *Message {
	return &Message{
		Type:      MessageTypeRequest,
		Target:    target,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// ActorState represents the current state of an Actor.
type ActorState uint8

const (
	// ActorStateIdle means the Actor is waiting for messages
	ActorStateIdle ActorState = iota

	// ActorStateRunning means the Actor is processing a message
	ActorStateRunning

	// ActorStateStopping means the Actor is draining its mailbox
	ActorStateStopping

	// ActorStateStopped means the Actor has been stopped
	ActorStateStopped
)

// String returns the string representation of ActorState.
func (s ActorState) String() string {
	switch s {
	case ActorStateIdle:
		return "idle"
	case ActorStateRunning:
		return "running"
	case ActorStateStopping:
		return "stopping"
	case ActorStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON and YAML.
func (s ActorState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

const (
	// MessageTypeRequest for commands submitted to an actor
	MessageTypeRequest MessageType = iota

	// MessageTypeResponse for successful replies to a Call
	MessageTypeResponse

	// MessageTypeError for failed replies to a Call
	MessageTypeError
)

// String returns the string representation of MessageType.
func (t MessageType) String() string {
	switch t {
	case MessageTypeRequest:
		return "request"
	case MessageTypeResponse:
		return "response"
	case MessageTypeError:
		return "error"
	default:
		return "unknown"
	}
}

// ActorOptions contains configuration options for creating an Actor.
type ActorOptions struct {
	// MailboxSize bounds the Actor's message queue
	MailboxSize int

	// Name is a human-readable name for the Actor
	Name string

	// ProcessTimeout bounds the context handed to each HandleMessage call
	ProcessTimeout time.Duration

	// Logger receives handler failures; nil discards them
	Logger *slog.Logger
}

// DefaultActorOptions returns sensible default options.
func DefaultActorOptions() ActorOptions {
	return ActorOptions{
		MailboxSize:    1000,
		ProcessTimeout: 30 * time.Second,
	}
}

// ActorStats contains runtime statistics for an Actor.
type ActorStats struct {
	ID                ActorID    `json:"id" yaml:"id"`
	Name              string     `json:"name" yaml:"name"`
	State             ActorState `json:"state" yaml:"state"`
	MessagesProcessed uint64     `json:"messages_processed" yaml:"messages_processed"`
	Queued            int        `json:"queued" yaml:"queued"`
	CreatedAt         time.Time  `json:"created_at" yaml:"created_at"`
	LastMessageAt     time.Time  `json:"last_message_at" yaml:"last_message_at"`
}
