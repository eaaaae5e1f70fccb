package registry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/najoast/chatreg/core"
	"github.com/najoast/chatreg/model"
)

// Mode selects how strictly a registry checks what it is asked to store.
type Mode string

const (
	// ModeLenient stores every record as submitted, duplicates included.
	ModeLenient Mode = "lenient"

	// ModeStrict validates records and rejects duplicate identifiers.
	ModeStrict Mode = "strict"
)

// String returns the string representation of Mode.
func (m Mode) String() string {
	return string(m)
}

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	return m == ModeLenient || m == ModeStrict
}

// ParseMode converts a configuration value into a Mode. Empty means lenient.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeLenient, nil
	}
	m := Mode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("invalid registry mode %q", s)
	}
	return m, nil
}

// Delivery hands a message to a registered chatbot.
type Delivery interface {
	Deliver(ctx context.Context, recipient model.Chatbot, text string) error
}

// DeliveryFunc adapts a function to the Delivery interface.
type DeliveryFunc func(ctx context.Context, recipient model.Chatbot, text string) error

// Deliver calls f(ctx, recipient, text).
func (f DeliveryFunc) Deliver(ctx context.Context, recipient model.Chatbot, text string) error {
	return f(ctx, recipient, text)
}

// Options configures a registry.
type Options struct {
	// Mode defaults to ModeLenient
	Mode Mode

	// MailboxSize bounds the number of queued commands; a full mailbox
	// rejects submissions with core.ErrMailboxFull
	MailboxSize int

	// ProcessTimeout bounds the context of each command, zero for none
	ProcessTimeout time.Duration

	// Logger defaults to a discarding logger
	Logger *slog.Logger

	// Delivery enables routing of SendMessage to registered chatbots.
	// Nil keeps SendMessage a no-op. Ignored by ConversationStore.
	Delivery Delivery
}

// DefaultOptions returns lenient options with the default mailbox size.
func DefaultOptions() Options {
	actorOpts := core.DefaultActorOptions()
	return Options{
		Mode:           ModeLenient,
		MailboxSize:    actorOpts.MailboxSize,
		ProcessTimeout: actorOpts.ProcessTimeout,
	}
}

func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.Mode == "" {
		o.Mode = defaults.Mode
	}
	if o.MailboxSize <= 0 {
		o.MailboxSize = defaults.MailboxSize
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}
