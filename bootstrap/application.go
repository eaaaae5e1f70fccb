package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/najoast/chatreg/config"
	"github.com/najoast/chatreg/core"
	"github.com/najoast/chatreg/logging"
	"github.com/najoast/chatreg/model"
	"github.com/najoast/chatreg/registry"
)

// Application wires configuration, logging, the actor system and both
// registries into one managed process.
type Application struct {
	cfg       config.Config
	logger    *logging.Logger
	lifecycle *DefaultLifecycleManager

	// mutex protects the fields below
	mutex   sync.RWMutex
	system  core.ActorSystem
	tracker *registry.ChatbotTracker
	store   *registry.ConversationStore
	running bool
	stopped bool
}

// NewApplication validates cfg and registers the core services. Nothing
// runs until Start. A nil logger discards output.
func NewApplication(cfg *config.Config, logger *logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ApplicationError{Operation: "configure", Err: err}
	}
	if logger == nil {
		logger = logging.NewWithWriter(cfg.Log, io.Discard)
	}

	app := &Application{
		cfg:       *cfg,
		logger:    logger,
		lifecycle: NewLifecycleManager(logger.Logger),
	}
	app.lifecycle.SetTimeout(cfg.Actor.ShutdownTimeout)

	if err := app.registerCoreServices(); err != nil {
		return nil, err
	}

	return app, nil
}

func (app *Application) registerCoreServices() error {
	trackerOpts, err := app.trackerOptions()
	if err != nil {
		return &ApplicationError{Operation: "configure", Service: ServiceChatbots, Err: err}
	}
	storeOpts, err := app.storeOptions()
	if err != nil {
		return &ApplicationError{Operation: "configure", Service: ServiceConversations, Err: err}
	}

	services := []struct {
		service Service
		deps    []string
	}{
		{&ActorSystemService{app: app}, nil},
		{&RegistryService{name: ServiceChatbots, open: func() (registryHandle, error) {
			tracker, err := registry.NewChatbotTracker(app.actorSystem(), trackerOpts)
			if err != nil {
				return nil, err
			}
			app.mutex.Lock()
			app.tracker = tracker
			app.mutex.Unlock()
			return tracker, nil
		}}, []string{ServiceActorSystem}},
		{&RegistryService{name: ServiceConversations, open: func() (registryHandle, error) {
			store, err := registry.NewConversationStore(app.actorSystem(), storeOpts)
			if err != nil {
				return nil, err
			}
			app.mutex.Lock()
			app.store = store
			app.mutex.Unlock()
			return store, nil
		}}, []string{ServiceActorSystem}},
	}

	for _, s := range services {
		if err := app.lifecycle.Register(s.service, s.deps...); err != nil {
			return &ApplicationError{Operation: "register", Service: s.service.Name(), Err: err}
		}
	}
	return nil
}

func (app *Application) trackerOptions() (registry.Options, error) {
	mode, err := registry.ParseMode(string(app.cfg.Registry.Chatbots.Mode))
	if err != nil {
		return registry.Options{}, err
	}

	opts := registry.Options{
		Mode:           mode,
		MailboxSize:    app.cfg.TrackerMailboxSize(),
		ProcessTimeout: app.cfg.Actor.ProcessTimeout,
		Logger:         app.logger.Logger,
	}
	if app.cfg.Registry.Chatbots.Routing {
		opts.Delivery = registry.DeliveryFunc(app.deliver)
	}
	return opts, nil
}

func (app *Application) storeOptions() (registry.Options, error) {
	mode, err := registry.ParseMode(string(app.cfg.Registry.Conversations.Mode))
	if err != nil {
		return registry.Options{}, err
	}

	return registry.Options{
		Mode:           mode,
		MailboxSize:    app.cfg.StoreMailboxSize(),
		ProcessTimeout: app.cfg.Actor.ProcessTimeout,
		Logger:         app.logger.Logger,
	}, nil
}

// deliver is the in-process delivery used when routing is enabled: the
// message ends up in the log.
func (app *Application) deliver(ctx context.Context, recipient model.Chatbot, text string) error {
	app.logger.Info("message delivered",
		"chatbot_id", recipient.ID,
		"chatbot_name", recipient.Name,
		"text", text,
	)
	return nil
}

// Start starts every service in dependency order. An application that has
// been shut down cannot be started again.
func (app *Application) Start(ctx context.Context) error {
	app.mutex.Lock()
	if app.running {
		app.mutex.Unlock()
		return fmt.Errorf("application is already running")
	}
	if app.stopped {
		app.mutex.Unlock()
		return &ApplicationError{Operation: "start", Err: ErrApplicationStopped}
	}
	app.running = true
	app.mutex.Unlock()

	if err := app.lifecycle.Start(ctx); err != nil {
		app.mutex.Lock()
		app.running = false
		app.mutex.Unlock()
		return err
	}

	app.logger.Info("application started",
		"name", app.cfg.App.Name,
		"environment", app.cfg.App.Environment,
		"chatbots_mode", app.cfg.Registry.Chatbots.Mode,
		"conversations_mode", app.cfg.Registry.Conversations.Mode,
	)
	return nil
}

// Run starts the application and blocks until ctx is done or the process
// receives SIGINT or SIGTERM, then shuts down gracefully.
func (app *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	app.logger.Info("shutting down", "reason", context.Cause(ctx))

	return app.Shutdown(context.Background())
}

// Shutdown stops every service in reverse start order. Commands the
// registries already accepted are applied before they stop.
func (app *Application) Shutdown(ctx context.Context) error {
	app.mutex.Lock()
	if !app.running {
		app.mutex.Unlock()
		return nil
	}
	app.running = false
	app.stopped = true
	app.mutex.Unlock()

	shutdownCtx, cancel := context.WithTimeout(ctx, app.cfg.Actor.ShutdownTimeout)
	defer cancel()

	if err := app.lifecycle.Stop(shutdownCtx); err != nil {
		return err
	}

	app.logger.Info("application stopped")
	return nil
}

// OnConfigChange applies a reloaded configuration. The log level changes
// live; registry settings only take effect after a restart.
func (app *Application) OnConfigChange(oldConfig, newConfig *config.Config) {
	if newConfig == nil {
		return
	}

	app.mutex.Lock()
	defer app.mutex.Unlock()

	if newConfig.Log.Level != app.cfg.Log.Level {
		app.logger.SetLevel(newConfig.Log.Level)
		app.logger.Info("log level changed", "from", app.cfg.Log.Level, "to", newConfig.Log.Level)
		app.cfg.Log.Level = newConfig.Log.Level
	}

	if changed := restartSections(&app.cfg, newConfig); len(changed) > 0 {
		app.logger.Warn("configuration change needs a restart", "sections", changed)
	}
}

// restartSections names the sections of next that differ from current and
// only take effect on a new process. The log level is excluded.
func restartSections(current, next *config.Config) []string {
	var changed []string

	if next.App != current.App {
		changed = append(changed, "app")
	}
	nextLog := next.Log
	nextLog.Level = current.Log.Level
	if nextLog != current.Log {
		changed = append(changed, "log")
	}
	if next.Actor != current.Actor {
		changed = append(changed, "actor")
	}
	if next.Registry.Chatbots != current.Registry.Chatbots {
		changed = append(changed, "registry.chatbots")
	}
	if next.Registry.Conversations != current.Registry.Conversations {
		changed = append(changed, "registry.conversations")
	}

	return changed
}

// Tracker returns the chatbot tracker, nil before Start.
func (app *Application) Tracker() *registry.ChatbotTracker {
	app.mutex.RLock()
	defer app.mutex.RUnlock()
	return app.tracker
}

// Conversations returns the conversation store, nil before Start.
func (app *Application) Conversations() *registry.ConversationStore {
	app.mutex.RLock()
	defer app.mutex.RUnlock()
	return app.store
}

// Snapshot reads both registries.
func (app *Application) Snapshot(ctx context.Context) (registry.Snapshot, error) {
	tracker, store := app.Tracker(), app.Conversations()
	if tracker == nil || store == nil {
		return registry.Snapshot{}, fmt.Errorf("application not started")
	}

	ctx, cancel := context.WithTimeout(ctx, app.cfg.Actor.CallTimeout)
	defer cancel()

	return registry.TakeSnapshot(ctx, tracker, store)
}

// Health reports the health of every service.
func (app *Application) Health(ctx context.Context) map[string]HealthStatus {
	return app.lifecycle.Health(ctx)
}

// Lifecycle returns the lifecycle manager.
func (app *Application) Lifecycle() LifecycleManager {
	return app.lifecycle
}

// Config returns a copy of the active configuration.
func (app *Application) Config() config.Config {
	app.mutex.RLock()
	defer app.mutex.RUnlock()
	return app.cfg
}

// Logger returns the application logger.
func (app *Application) Logger() *slog.Logger {
	return app.logger.Logger
}

func (app *Application) actorSystem() core.ActorSystem {
	app.mutex.RLock()
	defer app.mutex.RUnlock()
	return app.system
}
