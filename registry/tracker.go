package registry

import (
	"context"
	"fmt"

	"github.com/najoast/chatreg/core"
	"github.com/najoast/chatreg/model"
)

// TrackerName is the actor name of a ChatbotTracker.
const TrackerName = "chatbot-tracker"

type registerChatbot struct{ chatbot model.Chatbot }

type sendMessage struct {
	text      string
	recipient model.Chatbot
}

type listChatbots struct{}

type findChatbot struct{ id string }

type countChatbots struct{}

func (registerChatbot) command() string { return "register" }
func (sendMessage) command() string     { return "send_message" }
func (listChatbots) command() string    { return "list" }
func (findChatbot) command() string     { return "find" }
func (countChatbots) command() string   { return "count" }

// ChatbotTracker is the registry of chatbots for this process.
type ChatbotTracker struct {
	*dispatcher

	mode     Mode
	delivery Delivery

	// Owned by the actor goroutine.
	chatbots []model.Chatbot
	index    map[string]int // id -> position of its first registration
}

// NewChatbotTracker creates a tracker running on an actor of system.
func NewChatbotTracker(system core.ActorSystem, opts Options) (*ChatbotTracker, error) {
	opts = opts.withDefaults()
	if !opts.Mode.IsValid() {
		return nil, fmt.Errorf("invalid registry mode %q", opts.Mode)
	}

	t := &ChatbotTracker{
		mode:     opts.Mode,
		delivery: opts.Delivery,
		index:    make(map[string]int),
	}

	d, err := newDispatcher(system, TrackerName, opts, t.apply)
	if err != nil {
		return nil, err
	}
	t.dispatcher = d

	return t, nil
}

// Mode returns the mode the tracker was created with.
func (t *ChatbotTracker) Mode() Mode {
	return t.mode
}

// Register queues chatbot for registration. The returned error only
// reports submission failures.
func (t *ChatbotTracker) Register(chatbot model.Chatbot) error {
	return t.submit(registerChatbot{chatbot: chatbot})
}

// RegisterSync registers chatbot and waits for the outcome. In strict mode
// it fails with ErrDuplicateIdentifier or a model validation error.
func (t *ChatbotTracker) RegisterSync(ctx context.Context, chatbot model.Chatbot) error {
	_, err := t.call(ctx, registerChatbot{chatbot: chatbot})
	return err
}

// SendMessage queues text for recipient. Unless delivery is enabled this
// is a no-op: nothing is looked up, nothing changes and unknown recipients
// are not reported.
func (t *ChatbotTracker) SendMessage(text string, recipient model.Chatbot) error {
	return t.submit(sendMessage{text: text, recipient: recipient})
}

// SendMessageSync is SendMessage that waits for the outcome. With delivery
// enabled it reports ErrUnknownRecipient and delivery failures.
func (t *ChatbotTracker) SendMessageSync(ctx context.Context, text string, recipient model.Chatbot) error {
	_, err := t.call(ctx, sendMessage{text: text, recipient: recipient})
	return err
}

// List returns the registered chatbots in registration order.
func (t *ChatbotTracker) List(ctx context.Context) ([]model.Chatbot, error) {
	result, err := t.call(ctx, listChatbots{})
	if err != nil {
		return nil, err
	}
	return result.([]model.Chatbot), nil
}

// FindByID returns the first chatbot registered under id.
func (t *ChatbotTracker) FindByID(ctx context.Context, id string) (model.Chatbot, error) {
	result, err := t.call(ctx, findChatbot{id: id})
	if err != nil {
		return model.Chatbot{}, err
	}
	return result.(model.Chatbot), nil
}

// Count returns the number of registered chatbots.
func (t *ChatbotTracker) Count(ctx context.Context) (int, error) {
	result, err := t.call(ctx, countChatbots{})
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}

func (t *ChatbotTracker) apply(ctx context.Context, cmd interface{}) (interface{}, error) {
	switch c := cmd.(type) {
	case registerChatbot:
		return nil, t.register(c.chatbot)
	case sendMessage:
		return nil, t.route(ctx, c)
	case listChatbots:
		out := make([]model.Chatbot, len(t.chatbots))
		copy(out, t.chatbots)
		return out, nil
	case findChatbot:
		i, ok := t.index[c.id]
		if !ok {
			return nil, fmt.Errorf("chatbot %q: %w", c.id, ErrNotFound)
		}
		return t.chatbots[i], nil
	case countChatbots:
		return len(t.chatbots), nil
	default:
		return nil, fmt.Errorf("%s: %w: %T", TrackerName, core.ErrUnknownCommand, cmd)
	}
}

func (t *ChatbotTracker) register(chatbot model.Chatbot) error {
	_, seen := t.index[chatbot.ID]

	if t.mode == ModeStrict {
		if err := chatbot.Validate(); err != nil {
			return fmt.Errorf("register chatbot %q: %w", chatbot.ID, err)
		}
		if seen {
			return fmt.Errorf("register chatbot %q: %w", chatbot.ID, ErrDuplicateIdentifier)
		}
	}

	if !seen {
		t.index[chatbot.ID] = len(t.chatbots)
	}
	t.chatbots = append(t.chatbots, chatbot)

	t.logger.Debug("chatbot registered", "id", chatbot.ID, "name", chatbot.Name, "total", len(t.chatbots))
	return nil
}

func (t *ChatbotTracker) route(ctx context.Context, msg sendMessage) error {
	if t.delivery == nil {
		t.logger.Debug("message accepted", "recipient", msg.recipient.ID, "delivery", false)
		return nil
	}

	i, ok := t.index[msg.recipient.ID]
	if !ok {
		return fmt.Errorf("send to chatbot %q: %w", msg.recipient.ID, ErrUnknownRecipient)
	}

	if err := t.delivery.Deliver(ctx, t.chatbots[i], msg.text); err != nil {
		return fmt.Errorf("deliver to chatbot %q: %w", msg.recipient.ID, err)
	}

	t.logger.Debug("message delivered", "recipient", msg.recipient.ID)
	return nil
}
