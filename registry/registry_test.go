package registry

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/najoast/chatreg/core"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// newSystem returns an actor system that is shut down when the test ends.
func newSystem(t *testing.T) core.ActorSystem {
	t.Helper()
	system := core.NewActorSystem(testLogger())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, system.Shutdown(ctx))
	})
	return system
}

func newTracker(t *testing.T, opts Options) *ChatbotTracker {
	t.Helper()
	opts.Logger = testLogger()
	tracker, err := NewChatbotTracker(newSystem(t), opts)
	require.NoError(t, err)
	return tracker
}

func newStore(t *testing.T, opts Options) *ConversationStore {
	t.Helper()
	opts.Logger = testLogger()
	store, err := NewConversationStore(newSystem(t), opts)
	require.NoError(t, err)
	return store
}
