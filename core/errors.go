package core

import "errors"

var (
	// ErrMailboxFull is returned by Send when the mailbox has no free slot.
	ErrMailboxFull = errors.New("mailbox is full")

	// ErrActorStopped is returned for submissions to a stopping or stopped actor.
	ErrActorStopped = errors.New("actor is not running")

	// ErrActorStarted is returned when Start is called more than once.
	ErrActorStarted = errors.New("actor already started")

	// ErrUnknownCommand is returned by handlers for payloads they do not understand.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrHandlerPanic is reported to a waiting caller when the handler panicked.
	ErrHandlerPanic = errors.New("handler panicked")

	// ErrSystemShutdown is returned when creating actors on a system that is shutting down.
	ErrSystemShutdown = errors.New("actor system is shutting down")
)
