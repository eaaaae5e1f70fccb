package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// DefaultLifecycleManager implements the LifecycleManager interface
type DefaultLifecycleManager struct {
	// services holds all registered services
	services map[string]Service

	// registered keeps registration order so start order is deterministic
	registered []string

	// dependencies tracks service dependencies
	dependencies map[string][]string

	// startOrder tracks the order services were started
	startOrder []string

	mutex    sync.RWMutex
	started  bool
	stopping bool

	// listeners are called synchronously and must not call back into the manager
	listeners []func(LifecycleEvent)

	// timeout for a single service operation
	timeout time.Duration

	logger *slog.Logger
}

// NewLifecycleManager creates a new lifecycle manager
func NewLifecycleManager(logger *slog.Logger) *DefaultLifecycleManager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &DefaultLifecycleManager{
		services:     make(map[string]Service),
		dependencies: make(map[string][]string),
		timeout:      30 * time.Second,
		logger:       logger.With("component", "lifecycle"),
	}
}

// Register registers a service with the lifecycle manager
func (lm *DefaultLifecycleManager) Register(service Service, deps ...string) error {
	if service == nil {
		return fmt.Errorf("service cannot be nil")
	}
	name := service.Name()
	if name == "" {
		return fmt.Errorf("service name cannot be empty")
	}

	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	if lm.started {
		return fmt.Errorf("cannot register service %s: lifecycle manager already started", name)
	}

	if _, exists := lm.services[name]; exists {
		return fmt.Errorf("service %s is already registered", name)
	}

	lm.services[name] = service
	lm.registered = append(lm.registered, name)
	lm.dependencies[name] = deps

	lm.broadcastEvent(LifecycleEvent{
		Type:    EventServiceRegistered,
		Service: name,
		Data:    map[string]interface{}{"dependencies": deps},
	})

	return nil
}

// Start starts all services in dependency order. If a service fails to
// start, the services already started are stopped again.
func (lm *DefaultLifecycleManager) Start(ctx context.Context) error {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	if lm.started {
		return fmt.Errorf("lifecycle manager already started")
	}

	startOrder, err := lm.calculateStartOrder()
	if err != nil {
		return &ApplicationError{Operation: "start", Err: err}
	}

	lm.broadcastEvent(LifecycleEvent{
		Type: EventLifecycleStarting,
		Data: map[string]interface{}{"order": startOrder},
	})

	for _, serviceName := range startOrder {
		service := lm.services[serviceName]

		lm.broadcastEvent(LifecycleEvent{Type: EventServiceStarting, Service: serviceName})

		startCtx, cancel := context.WithTimeout(ctx, lm.timeout)
		err := service.Start(startCtx)
		cancel()

		if err != nil {
			lm.broadcastEvent(LifecycleEvent{Type: EventServiceStartFailed, Service: serviceName, Error: err})
			lm.stopStarted(ctx)
			return &ApplicationError{Operation: "start", Service: serviceName, Err: err}
		}

		lm.startOrder = append(lm.startOrder, serviceName)
		lm.broadcastEvent(LifecycleEvent{Type: EventServiceStarted, Service: serviceName})
	}

	lm.started = true
	lm.broadcastEvent(LifecycleEvent{Type: EventLifecycleStarted})

	return nil
}

// Stop stops all services in reverse start order
func (lm *DefaultLifecycleManager) Stop(ctx context.Context) error {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	if !lm.started {
		return nil
	}

	if lm.stopping {
		return fmt.Errorf("lifecycle manager already stopping")
	}

	lm.stopping = true
	lm.broadcastEvent(LifecycleEvent{Type: EventLifecycleStopping})

	err := lm.stopStarted(ctx)

	lm.started = false
	lm.stopping = false

	lm.broadcastEvent(LifecycleEvent{Type: EventLifecycleStopped})

	return err
}

// stopStarted stops every started service, last started first.
func (lm *DefaultLifecycleManager) stopStarted(ctx context.Context) error {
	var errs []error

	for i := len(lm.startOrder) - 1; i >= 0; i-- {
		serviceName := lm.startOrder[i]
		service := lm.services[serviceName]

		lm.broadcastEvent(LifecycleEvent{Type: EventServiceStopping, Service: serviceName})

		stopCtx, cancel := context.WithTimeout(ctx, lm.timeout)
		err := service.Stop(stopCtx)
		cancel()

		if err != nil {
			errs = append(errs, &ApplicationError{Operation: "stop", Service: serviceName, Err: err})
			lm.broadcastEvent(LifecycleEvent{Type: EventServiceStopFailed, Service: serviceName, Error: err})
		} else {
			lm.broadcastEvent(LifecycleEvent{Type: EventServiceStopped, Service: serviceName})
		}
	}

	lm.startOrder = nil
	return errors.Join(errs...)
}

// Health returns the health status of all services
func (lm *DefaultLifecycleManager) Health(ctx context.Context) map[string]HealthStatus {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()

	health := make(map[string]HealthStatus, len(lm.services))

	for name, service := range lm.services {
		healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		status, err := service.Health(healthCtx)
		cancel()

		if err != nil {
			status = HealthStatus{State: HealthUnhealthy, Message: err.Error()}
		}
		if status.LastCheck.IsZero() {
			status.LastCheck = time.Now()
		}
		health[name] = status
	}

	return health
}

// Services returns all registered service names
func (lm *DefaultLifecycleManager) Services() []string {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()

	names := make([]string, len(lm.registered))
	copy(names, lm.registered)
	sort.Strings(names)
	return names
}

// AddListener adds a lifecycle event listener
func (lm *DefaultLifecycleManager) AddListener(listener func(LifecycleEvent)) {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	lm.listeners = append(lm.listeners, listener)
}

// SetTimeout sets the timeout for service operations
func (lm *DefaultLifecycleManager) SetTimeout(timeout time.Duration) {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	lm.timeout = timeout
}

// IsStarted returns true if the lifecycle manager has been started
func (lm *DefaultLifecycleManager) IsStarted() bool {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()

	return lm.started
}

// calculateStartOrder orders services so that dependencies start first.
// Ties are broken by registration order.
func (lm *DefaultLifecycleManager) calculateStartOrder() ([]string, error) {
	// Topological sort using Kahn's algorithm
	inDegree := make(map[string]int, len(lm.services))
	graph := make(map[string][]string, len(lm.services))

	for _, service := range lm.registered {
		for _, dep := range lm.dependencies[service] {
			if _, exists := lm.services[dep]; !exists {
				return nil, fmt.Errorf("dependency %s of service %s is not registered", dep, service)
			}
			graph[dep] = append(graph[dep], service)
			inDegree[service]++
		}
	}

	queue := []string{}
	for _, service := range lm.registered {
		if inDegree[service] == 0 {
			queue = append(queue, service)
		}
	}

	result := make([]string, 0, len(lm.services))

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		for _, dependent := range graph[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(lm.services) {
		return nil, fmt.Errorf("circular dependency detected")
	}

	return result, nil
}

// broadcastEvent logs event and hands it to every listener.
func (lm *DefaultLifecycleManager) broadcastEvent(event LifecycleEvent) {
	event.Timestamp = time.Now()

	attrs := []any{"event", event.Type}
	if event.Service != "" {
		attrs = append(attrs, "service", event.Service)
	}
	if event.Error != nil {
		lm.logger.Warn("lifecycle event", append(attrs, "error", event.Error)...)
	} else {
		lm.logger.Debug("lifecycle event", attrs...)
	}

	for _, listener := range lm.listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					lm.logger.Error("lifecycle listener panicked", "event", event.Type, "panic", r)
				}
			}()
			listener(event)
		}()
	}
}
