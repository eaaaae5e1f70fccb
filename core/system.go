package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// system implements the ActorSystem interface.
type system struct {
	router *router
	logger *slog.Logger
	mu     sync.Mutex
	closed bool

	// Parent context of every actor, cancelled once Shutdown has stopped them
	ctx    context.Context
	cancel context.CancelFunc
}

// NewActorSystem creates a new ActorSystem. A nil logger discards output.
func NewActorSystem(logger *slog.Logger) ActorSystem {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &system{
		router: NewRouter().(*router),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// NewActor creates, registers and starts a new Actor.
func (s *system) NewActor(handler MessageHandler, opts ActorOptions) (Actor, error) {
	if handler == nil {
		return nil, fmt.Errorf("cannot create actor with nil handler")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSystemShutdown
	}

	if opts.MailboxSize <= 0 {
		opts.MailboxSize = DefaultActorOptions().MailboxSize
	}
	if opts.Logger == nil {
		opts.Logger = s.logger
	}

	actor := NewActor(s.router.NextID(), handler, opts)

	if err := s.router.Register(actor); err != nil {
		return nil, fmt.Errorf("failed to register actor: %w", err)
	}

	if err := actor.Start(s.ctx); err != nil {
		_ = s.router.Unregister(actor.ID())
		return nil, fmt.Errorf("failed to start actor: %w", err)
	}

	s.logger.Debug("actor started", "actor", actor.ID(), "name", opts.Name, "mailbox", opts.MailboxSize)
	return actor, nil
}

// GetActor retrieves an Actor by its ID.
func (s *system) GetActor(id ActorID) (Actor, bool) {
	return s.router.Lookup(id)
}

// Send submits a payload to an Actor without waiting.
func (s *system) Send(to ActorID, payload interface{}) error {
	return s.router.Route(NewMessage(to, payload))
}

// Call submits a payload to an Actor and waits for the result.
func (s *system) Call(ctx context.Context, to ActorID, payload interface{}) (interface{}, error) {
	actor, exists := s.router.Lookup(to)
	if !exists {
		return nil, fmt.Errorf("target actor %d not found", to)
	}

	resp, err := actor.Call(ctx, NewMessage(to, payload))
	if err != nil {
		return nil, err
	}
	return resp.Payload, nil
}

// Shutdown stops every Actor that is still running. Actors that were
// already stopped by their owners are skipped.
func (s *system) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true

	done := make(chan error, 1)
	go func() {
		defer s.cancel()

		var errs []error
		for _, id := range s.router.List() {
			actor, exists := s.router.Lookup(id)
			if !exists {
				continue
			}
			if state := actor.Stats().State; state == ActorStateStopped {
				continue
			}
			if err := actor.Stop(); err != nil && !errors.Is(err, ErrActorStopped) {
				s.logger.Warn("failed to stop actor", "actor", id, "error", err)
				errs = append(errs, err)
			}
		}
		done <- errors.Join(errs...)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns statistics for all Actors.
func (s *system) Stats() []ActorStats {
	var stats []ActorStats

	for _, id := range s.router.List() {
		if actor, exists := s.router.Lookup(id); exists {
			stats = append(stats, actor.Stats())
		}
	}

	return stats
}
