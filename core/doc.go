// Package core implements the actor plumbing behind the registries.
//
// An Actor owns a bounded mailbox and a single goroutine that hands each
// Message to a MessageHandler, one at a time and in arrival order. State
// reachable only from a handler therefore needs no locking. The Router and
// ActorSystem allocate identifiers, keep track of live actors and stop them
// at shutdown.
package core
