package core

import (
	"context"
)

// MessageHandler processes incoming messages for an Actor.
type MessageHandler interface {
	// HandleMessage processes a single message. The returned value is
	// delivered to the caller of Call; it is dropped for Send.
	HandleMessage(ctx context.Context, msg *Message) (interface{}, error)
}

// HandlerFunc adapts a function to the MessageHandler interface.
type HandlerFunc func(ctx context.Context, msg *Message) (interface{}, error)

// HandleMessage calls f(ctx, msg).
func (f HandlerFunc) HandleMessage(ctx context.Context, msg *Message) (interface{}, error) {
	return f(ctx, msg)
}

// Actor represents a computational unit that processes messages sequentially.
// Each Actor runs in its own goroutine and communicates through channels.
type Actor interface {
	// ID returns the unique identifier of this Actor.
	ID() ActorID

	// Start begins the Actor's message processing loop.
	// It may be called only once per Actor instance.
	Start(ctx context.Context) error

	// Stop shuts the Actor down. Messages already accepted into the
	// mailbox are processed before Stop returns.
	Stop() error

	// Send enqueues a message without waiting for it to be processed.
	// It fails with ErrMailboxFull or ErrActorStopped.
	Send(msg *Message) error

	// Call enqueues a message and waits for the handler's result.
	Call(ctx context.Context, msg *Message) (*Message, error)

	// Stats returns current runtime statistics for this Actor.
	Stats() ActorStats
}

// Router tracks live Actors by ID.
type Router interface {
	// Register adds an Actor to the routing table.
	Register(actor Actor) error

	// Unregister removes an Actor from the routing table.
	Unregister(id ActorID) error

	// Route sends a message to its target Actor.
	Route(msg *Message) error

	// Lookup finds an Actor by its ID.
	Lookup(id ActorID) (Actor, bool)

	// List returns all registered Actor IDs in ascending order.
	List() []ActorID
}

// ActorSystem manages the lifecycle of all Actors in the process.
type ActorSystem interface {
	// NewActor creates, registers and starts a new Actor.
	NewActor(handler MessageHandler, opts ActorOptions) (Actor, error)

	// GetActor retrieves an Actor by its ID.
	GetActor(id ActorID) (Actor, bool)

	// Send submits a payload to an Actor without waiting.
	Send(to ActorID, payload interface{}) error

	// Call submits a payload to an Actor and waits for the result.
	Call(ctx context.Context, to ActorID, payload interface{}) (interface{}, error)

	// Shutdown stops every Actor that is still running.
	Shutdown(ctx context.Context) error

	// Stats returns statistics for all Actors.
	Stats() []ActorStats
}
