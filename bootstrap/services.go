package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/najoast/chatreg/core"
)

// Service names registered by Application
const (
	ServiceActorSystem   = "actor-system"
	ServiceChatbots      = "chatbot-tracker"
	ServiceConversations = "conversation-store"
)

// ActorSystemService owns the actor system shared by the registries.
// A stopped system is released so the next Start creates a fresh one.
type ActorSystemService struct {
	app     *Application
	stopped bool
}

func (s *ActorSystemService) Name() string {
	return ServiceActorSystem
}

func (s *ActorSystemService) Start(ctx context.Context) error {
	s.app.mutex.Lock()
	defer s.app.mutex.Unlock()

	if s.app.system == nil {
		s.app.system = core.NewActorSystem(s.app.logger.Logger)
	}
	s.stopped = false
	return nil
}

func (s *ActorSystemService) Stop(ctx context.Context) error {
	s.app.mutex.Lock()
	system := s.app.system
	s.app.system = nil
	s.stopped = true
	s.app.mutex.Unlock()

	if system == nil {
		return nil
	}
	return system.Shutdown(ctx)
}

func (s *ActorSystemService) Health(ctx context.Context) (HealthStatus, error) {
	s.app.mutex.RLock()
	system, stopped := s.app.system, s.stopped
	s.app.mutex.RUnlock()

	if system == nil {
		if stopped {
			return HealthStatus{State: HealthStopped, Message: "actor system stopped"}, nil
		}
		return HealthStatus{
			State:   HealthUnknown,
			Message: "actor system not initialized",
		}, nil
	}

	return HealthStatus{
		State:   HealthHealthy,
		Message: "actor system running",
		Data: map[string]interface{}{
			"actors": len(system.Stats()),
		},
	}, nil
}

// registryHandle is the part of a registry the lifecycle needs.
type registryHandle interface {
	Name() string
	Stats() core.ActorStats
	Close() error
}

// RegistryService wraps a registry as a managed service. The registry is
// created on Start, once the actor system exists; Stop closes it and the
// next Start opens a new one.
type RegistryService struct {
	name     string
	open     func() (registryHandle, error)
	registry registryHandle

	// last closed registry, kept for health reporting
	closed registryHandle
}

func (s *RegistryService) Name() string {
	return s.name
}

func (s *RegistryService) Start(ctx context.Context) error {
	if s.registry != nil {
		return nil
	}
	reg, err := s.open()
	if err != nil {
		return err
	}
	s.registry = reg
	return nil
}

// Stop closes the registry. Commands already queued are applied first.
func (s *RegistryService) Stop(ctx context.Context) error {
	if s.registry == nil {
		return nil
	}
	reg := s.registry
	s.registry, s.closed = nil, reg

	if err := reg.Close(); err != nil && !errors.Is(err, core.ErrActorStopped) {
		return err
	}
	return nil
}

func (s *RegistryService) Health(ctx context.Context) (HealthStatus, error) {
	reg := s.registry
	if reg == nil {
		reg = s.closed
	}
	if reg == nil {
		return HealthStatus{
			State:   HealthUnknown,
			Message: fmt.Sprintf("%s not started", s.name),
		}, nil
	}

	stats := reg.Stats()
	status := HealthStatus{
		Data: map[string]interface{}{
			"messages_processed": stats.MessagesProcessed,
			"queued":             stats.Queued,
		},
	}
	if !stats.LastMessageAt.IsZero() {
		status.Data["last_message_at"] = stats.LastMessageAt
	}

	switch stats.State {
	case core.ActorStateIdle, core.ActorStateRunning:
		status.State = HealthHealthy
		status.Message = fmt.Sprintf("%s accepting commands", s.name)
	case core.ActorStateStopping:
		status.State = HealthStopping
		status.Message = fmt.Sprintf("%s draining", s.name)
	case core.ActorStateStopped:
		status.State = HealthStopped
		status.Message = fmt.Sprintf("%s stopped", s.name)
	default:
		status.State = HealthUnknown
	}

	return status, nil
}
