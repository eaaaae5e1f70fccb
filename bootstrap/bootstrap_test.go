package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/najoast/chatreg/config"
	"github.com/najoast/chatreg/core"
	"github.com/najoast/chatreg/logging"
	"github.com/najoast/chatreg/model"
	"github.com/najoast/chatreg/registry"
)

// TestService is a simple service implementation for testing
type TestService struct {
	name     string
	startErr error
	record   *[]string

	mu      sync.Mutex
	started bool
	stopped bool
}

func (s *TestService) Name() string { return s.name }

func (s *TestService) Start(ctx context.Context) error {
	if s.record != nil {
		*s.record = append(*s.record, "start:"+s.name)
	}
	if s.startErr != nil {
		return s.startErr
	}
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	return nil
}

func (s *TestService) Stop(ctx context.Context) error {
	if s.record != nil {
		*s.record = append(*s.record, "stop:"+s.name)
	}
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	return nil
}

func (s *TestService) Health(ctx context.Context) (HealthStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return HealthStatus{State: HealthUnknown}, nil
	}
	return HealthStatus{State: HealthHealthy, Message: "Test service running"}, nil
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestLifecycleManager(t *testing.T) {
	lm := NewLifecycleManager(nil)
	testService := &TestService{name: "test"}

	if err := lm.Register(testService); err != nil {
		t.Fatalf("Failed to register service: %v", err)
	}
	if err := lm.Register(testService); err == nil {
		t.Error("Registering the same service twice should fail")
	}

	ctx := testContext(t)

	if err := lm.Start(ctx); err != nil {
		t.Fatalf("Failed to start services: %v", err)
	}
	if !testService.started {
		t.Error("Test service should be started")
	}
	if !lm.IsStarted() {
		t.Error("Lifecycle manager should report started")
	}

	health := lm.Health(ctx)
	if health["test"].State != HealthHealthy {
		t.Errorf("Expected healthy state, got %v", health["test"].State)
	}
	if health["test"].LastCheck.IsZero() {
		t.Error("Health check time should be set")
	}

	if err := lm.Stop(ctx); err != nil {
		t.Fatalf("Failed to stop services: %v", err)
	}
	if !testService.stopped {
		t.Error("Test service should be stopped")
	}
}

func TestLifecycleOrder(t *testing.T) {
	var record []string
	lm := NewLifecycleManager(nil)

	// Registered before its dependency on purpose.
	services := []struct {
		service *TestService
		deps    []string
	}{
		{&TestService{name: "store", record: &record}, []string{"system"}},
		{&TestService{name: "system", record: &record}, nil},
		{&TestService{name: "tracker", record: &record}, []string{"system"}},
	}
	for _, s := range services {
		if err := lm.Register(s.service, s.deps...); err != nil {
			t.Fatalf("Failed to register %s: %v", s.service.name, err)
		}
	}

	ctx := testContext(t)
	if err := lm.Start(ctx); err != nil {
		t.Fatalf("Failed to start services: %v", err)
	}
	if err := lm.Stop(ctx); err != nil {
		t.Fatalf("Failed to stop services: %v", err)
	}

	expected := []string{
		"start:system", "start:store", "start:tracker",
		"stop:tracker", "stop:store", "stop:system",
	}
	if strings.Join(record, ",") != strings.Join(expected, ",") {
		t.Errorf("Expected %v, got %v", expected, record)
	}

	if names := lm.Services(); strings.Join(names, ",") != "store,system,tracker" {
		t.Errorf("Unexpected services %v", names)
	}
}

func TestLifecycleDependencyErrors(t *testing.T) {
	ctx := testContext(t)

	lm := NewLifecycleManager(nil)
	lm.Register(&TestService{name: "a"}, "missing")
	if err := lm.Start(ctx); err == nil {
		t.Error("Start should fail on an unregistered dependency")
	}

	lm = NewLifecycleManager(nil)
	lm.Register(&TestService{name: "a"}, "b")
	lm.Register(&TestService{name: "b"}, "a")
	err := lm.Start(ctx)
	if err == nil || !strings.Contains(err.Error(), "circular dependency") {
		t.Errorf("Expected circular dependency error, got %v", err)
	}
}

func TestLifecycleStartFailureRollsBack(t *testing.T) {
	var record []string
	boom := errors.New("boom")

	lm := NewLifecycleManager(nil)
	first := &TestService{name: "first", record: &record}
	lm.Register(first)
	lm.Register(&TestService{name: "second", record: &record, startErr: boom}, "first")

	var events []string
	lm.AddListener(func(e LifecycleEvent) {
		events = append(events, e.Type)
	})

	err := lm.Start(testContext(t))
	if !errors.Is(err, boom) {
		t.Fatalf("Expected start error to wrap boom, got %v", err)
	}

	var appErr *ApplicationError
	if !errors.As(err, &appErr) || appErr.Service != "second" || appErr.Operation != "start" {
		t.Errorf("Expected ApplicationError for service second, got %#v", err)
	}
	if !first.stopped {
		t.Error("Started services should be stopped after a failed start")
	}
	if lm.IsStarted() {
		t.Error("Lifecycle manager should not report started")
	}

	found := false
	for _, e := range events {
		if e == EventServiceStartFailed {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected %s event, got %v", EventServiceStartFailed, events)
	}
}

func TestLifecycleListenerPanic(t *testing.T) {
	lm := NewLifecycleManager(nil)
	lm.AddListener(func(LifecycleEvent) { panic("listener") })

	if err := lm.Register(&TestService{name: "test"}); err != nil {
		t.Fatalf("Register should survive a panicking listener: %v", err)
	}
}

func TestApplicationError(t *testing.T) {
	inner := errors.New("inner")

	err := &ApplicationError{Operation: "start", Service: "svc", Err: inner}
	if err.Error() != "start failed for service svc: inner" {
		t.Errorf("Unexpected message %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("ApplicationError should unwrap to its cause")
	}

	err = &ApplicationError{Operation: "configure", Err: inner}
	if err.Error() != "configure failed: inner" {
		t.Errorf("Unexpected message %q", err.Error())
	}
}

func newTestApplication(t *testing.T, cfg *config.Config) (*Application, *bytes.Buffer) {
	t.Helper()

	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg.Log.Color = false

	var buf bytes.Buffer
	logger := logging.NewWithWriter(cfg.Log, &syncWriter{w: &buf})

	app, err := NewApplication(cfg, logger)
	if err != nil {
		t.Fatalf("Failed to create application: %v", err)
	}
	t.Cleanup(func() { app.Shutdown(context.Background()) })
	return app, &buf
}

// syncWriter serializes writes from actor goroutines.
type syncWriter struct {
	mu sync.Mutex
	w  *bytes.Buffer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func TestApplication(t *testing.T) {
	app, _ := newTestApplication(t, nil)
	ctx := testContext(t)

	if app.Tracker() != nil || app.Conversations() != nil {
		t.Error("Registries should not exist before Start")
	}
	if _, err := app.Snapshot(ctx); err == nil {
		t.Error("Snapshot should fail before Start")
	}

	services := app.Lifecycle().Services()
	expected := []string{ServiceActorSystem, ServiceChatbots, ServiceConversations}
	if strings.Join(services, ",") != strings.Join(expected, ",") {
		t.Errorf("Expected services %v, got %v", expected, services)
	}

	if err := app.Start(ctx); err != nil {
		t.Fatalf("Failed to start application: %v", err)
	}
	if err := app.Start(ctx); err == nil {
		t.Error("Second Start should fail")
	}

	bot := model.NewChatbot("SampleBot")
	bot.SetID("id-1")
	if err := app.Tracker().Register(bot); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := app.Tracker().SendMessage("Hello, World!", bot); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	conv := model.NewConversation(1700000000)
	conv.SetID("conv-1")
	if err := app.Conversations().Store(conv); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	snap, err := app.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(snap.Chatbots) != 1 || snap.Chatbots[0] != bot {
		t.Errorf("Unexpected chatbots %v", snap.Chatbots)
	}
	if len(snap.Conversations) != 1 || snap.Conversations[0].CreatedAt != 1700000000 {
		t.Errorf("Unexpected conversations %v", snap.Conversations)
	}

	health := app.Health(ctx)
	for _, name := range expected {
		if health[name].State != HealthHealthy {
			t.Errorf("Expected %s healthy, got %v (%s)", name, health[name].State, health[name].Message)
		}
	}

	if err := app.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	health = app.Health(ctx)
	if health[ServiceChatbots].State != HealthStopped {
		t.Errorf("Expected tracker stopped, got %v", health[ServiceChatbots].State)
	}
	if err := app.Tracker().Register(bot); !errors.Is(err, core.ErrActorStopped) {
		t.Errorf("Expected ErrActorStopped after shutdown, got %v", err)
	}
}

func TestApplicationShutdownAppliesQueuedCommands(t *testing.T) {
	app, _ := newTestApplication(t, nil)
	ctx := testContext(t)

	if err := app.Start(ctx); err != nil {
		t.Fatalf("Failed to start application: %v", err)
	}

	tracker := app.Tracker()
	for i := 0; i < 50; i++ {
		if err := tracker.Register(model.Chatbot{ID: "bot", Name: "SampleBot"}); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	if err := app.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	if processed := tracker.Stats().MessagesProcessed; processed != 50 {
		t.Errorf("Expected 50 applied commands, got %d", processed)
	}
}

func TestApplicationStrictModeAndRouting(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Registry.Chatbots.Mode = registry.ModeStrict
	cfg.Registry.Chatbots.Routing = true

	app, buf := newTestApplication(t, cfg)
	ctx := testContext(t)

	if err := app.Start(ctx); err != nil {
		t.Fatalf("Failed to start application: %v", err)
	}

	tracker := app.Tracker()
	if tracker.Mode() != registry.ModeStrict {
		t.Errorf("Expected strict tracker, got %s", tracker.Mode())
	}
	if app.Conversations().Mode() != registry.ModeLenient {
		t.Errorf("Expected lenient store, got %s", app.Conversations().Mode())
	}

	bot := model.Chatbot{ID: "id-1", Name: "SampleBot"}
	if err := tracker.RegisterSync(ctx, bot); err != nil {
		t.Fatalf("RegisterSync failed: %v", err)
	}
	if err := tracker.RegisterSync(ctx, bot); !errors.Is(err, registry.ErrDuplicateIdentifier) {
		t.Errorf("Expected ErrDuplicateIdentifier, got %v", err)
	}

	if err := tracker.SendMessageSync(ctx, "Hello, World!", bot); err != nil {
		t.Fatalf("SendMessageSync failed: %v", err)
	}
	if err := tracker.SendMessageSync(ctx, "hi", model.Chatbot{ID: "nobody"}); !errors.Is(err, registry.ErrUnknownRecipient) {
		t.Errorf("Expected ErrUnknownRecipient, got %v", err)
	}

	app.Shutdown(ctx)
	if !strings.Contains(buf.String(), "message delivered") || !strings.Contains(buf.String(), "chatbot_id=id-1") {
		t.Errorf("Expected delivery to be logged, got:\n%s", buf.String())
	}
}

func TestApplicationInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Registry.Conversations.Mode = "sloppy"

	_, err := NewApplication(cfg, nil)
	if !errors.Is(err, config.ErrInvalidMode) {
		t.Errorf("Expected ErrInvalidMode, got %v", err)
	}
}

func TestApplicationOnConfigChange(t *testing.T) {
	app, buf := newTestApplication(t, nil)

	oldConfig := app.Config()
	newConfig := oldConfig
	newConfig.Log.Level = config.LogLevelDebug
	newConfig.Registry.Chatbots.Mode = registry.ModeStrict

	app.OnConfigChange(&oldConfig, &newConfig)

	if app.Config().Log.Level != config.LogLevelDebug {
		t.Errorf("Expected debug level, got %s", app.Config().Log.Level)
	}
	if app.Config().Registry.Chatbots.Mode != registry.ModeLenient {
		t.Error("Registry mode should not change without a restart")
	}
	if !app.Logger().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Logger should accept debug records after reload")
	}

	out := buf.String()
	if !strings.Contains(out, "log level changed") {
		t.Errorf("Expected level change to be logged, got:\n%s", out)
	}
	if !strings.Contains(out, "configuration change needs a restart sections=[registry.chatbots]") {
		t.Errorf("Expected restart warning naming registry.chatbots, got:\n%s", out)
	}
}

func TestApplicationOnConfigChangeNamesSections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
		want   string
	}{
		{
			name:   "level only",
			mutate: func(c *config.Config) { c.Log.Level = config.LogLevelWarn },
		},
		{
			name:   "store mailbox",
			mutate: func(c *config.Config) { c.Registry.Conversations.MailboxSize = 16 },
			want:   "sections=[registry.conversations]",
		},
		{
			name:   "routing and call timeout",
			mutate: func(c *config.Config) { c.Registry.Chatbots.Routing = true; c.Actor.CallTimeout = time.Second },
			want:   "sections=[actor registry.chatbots]",
		},
		{
			name:   "log format",
			mutate: func(c *config.Config) { c.Log.Format = "json" },
			want:   "sections=[log]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, buf := newTestApplication(t, nil)

			oldConfig := app.Config()
			newConfig := oldConfig
			tt.mutate(&newConfig)
			app.OnConfigChange(&oldConfig, &newConfig)

			out := buf.String()
			if tt.want == "" {
				if strings.Contains(out, "needs a restart") {
					t.Errorf("Unexpected restart warning:\n%s", out)
				}
				return
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("Expected %q in:\n%s", tt.want, out)
			}
			if strings.Contains(out, "mode") {
				t.Errorf("Warning should name sections, not modes:\n%s", out)
			}
		})
	}
}

func TestApplicationCannotRestartAfterShutdown(t *testing.T) {
	app, _ := newTestApplication(t, nil)
	ctx := testContext(t)

	if err := app.Start(ctx); err != nil {
		t.Fatalf("Failed to start application: %v", err)
	}
	if err := app.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	err := app.Start(ctx)
	if !errors.Is(err, ErrApplicationStopped) {
		t.Fatalf("Expected ErrApplicationStopped on restart, got %v", err)
	}

	health := app.Health(ctx)
	if health[ServiceActorSystem].State != HealthStopped {
		t.Errorf("Expected actor system stopped, got %v", health[ServiceActorSystem].State)
	}
	if health[ServiceConversations].State != HealthStopped {
		t.Errorf("Expected store stopped, got %v", health[ServiceConversations].State)
	}
}

func TestLifecycleRestartOpensFreshRegistries(t *testing.T) {
	app, _ := newTestApplication(t, nil)
	ctx := testContext(t)
	lm := app.Lifecycle()

	if err := lm.Start(ctx); err != nil {
		t.Fatalf("Failed to start services: %v", err)
	}
	first := app.Tracker()
	if err := lm.Stop(ctx); err != nil {
		t.Fatalf("Failed to stop services: %v", err)
	}

	if err := lm.Start(ctx); err != nil {
		t.Fatalf("Failed to restart services: %v", err)
	}
	t.Cleanup(func() { lm.Stop(context.Background()) })

	second := app.Tracker()
	if second == first {
		t.Fatal("Expected a new tracker after restart")
	}
	if err := second.RegisterSync(ctx, model.Chatbot{ID: "id-1", Name: "SampleBot"}); err != nil {
		t.Errorf("Register on restarted tracker failed: %v", err)
	}
	if err := first.Register(model.Chatbot{ID: "id-1"}); !errors.Is(err, core.ErrActorStopped) {
		t.Errorf("Expected old tracker to stay stopped, got %v", err)
	}
}

func TestApplicationRunStopsOnCancel(t *testing.T) {
	app, _ := newTestApplication(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for app.Tracker() == nil && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if app.Tracker() == nil {
		t.Fatal("Application did not start")
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if state := app.Tracker().Stats().State; state != core.ActorStateStopped {
		t.Errorf("Expected tracker stopped, got %v", state)
	}
}
