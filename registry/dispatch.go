package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/najoast/chatreg/core"
)

// commandFunc applies one command to a registry's private state.
type commandFunc func(ctx context.Context, cmd interface{}) (interface{}, error)

// dispatcher is the mailbox side of a registry: it owns the actor and turns
// method calls into messages.
type dispatcher struct {
	name   string
	actor  core.Actor
	logger *slog.Logger
}

func newDispatcher(system core.ActorSystem, name string, opts Options, apply commandFunc) (*dispatcher, error) {
	d := &dispatcher{
		name:   name,
		logger: opts.Logger.With("registry", name),
	}

	handler := core.HandlerFunc(func(ctx context.Context, msg *core.Message) (interface{}, error) {
		result, err := apply(ctx, msg.Payload)
		if err != nil && msg.Session == 0 {
			// Nobody is waiting for a fire-and-forget command.
			d.logger.Warn("command rejected", "command", commandName(msg.Payload), "error", err)
		}
		return result, err
	})

	actor, err := system.NewActor(handler, core.ActorOptions{
		Name:           name,
		MailboxSize:    opts.MailboxSize,
		ProcessTimeout: opts.ProcessTimeout,
		Logger:         opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	d.actor = actor

	return d, nil
}

// submit queues cmd without waiting for it to be applied.
func (d *dispatcher) submit(cmd interface{}) error {
	return d.actor.Send(core.NewMessage(d.actor.ID(), cmd))
}

// call queues cmd and waits for its result.
func (d *dispatcher) call(ctx context.Context, cmd interface{}) (interface{}, error) {
	resp, err := d.actor.Call(ctx, core.NewMessage(d.actor.ID(), cmd))
	if err != nil {
		return nil, err
	}
	return resp.Payload, nil
}

// Name returns the registry name.
func (d *dispatcher) Name() string {
	return d.name
}

// Stats returns the statistics of the registry's actor.
func (d *dispatcher) Stats() core.ActorStats {
	return d.actor.Stats()
}

// Close stops the registry after applying every command already queued.
func (d *dispatcher) Close() error {
	return d.actor.Stop()
}

func commandName(cmd interface{}) string {
	if named, ok := cmd.(interface{ command() string }); ok {
		return named.command()
	}
	return fmt.Sprintf("%T", cmd)
}
