package registry

import (
	"context"
	"fmt"

	"github.com/najoast/chatreg/core"
	"github.com/najoast/chatreg/model"
)

// StoreName is the actor name of a ConversationStore.
const StoreName = "conversation-store"

type storeConversation struct{ conversation model.Conversation }

type appendMessage struct {
	id   string
	text string
}

type listConversations struct{}

type findConversation struct{ id string }

type countConversations struct{}

func (storeConversation) command() string  { return "store" }
func (appendMessage) command() string      { return "append" }
func (listConversations) command() string  { return "list" }
func (findConversation) command() string   { return "find" }
func (countConversations) command() string { return "count" }

// ConversationStore is the registry of conversations for this process.
type ConversationStore struct {
	*dispatcher

	mode Mode

	// Owned by the actor goroutine.
	conversations []model.Conversation
	index         map[string]int
}

// NewConversationStore creates a store running on an actor of system.
func NewConversationStore(system core.ActorSystem, opts Options) (*ConversationStore, error) {
	opts = opts.withDefaults()
	if !opts.Mode.IsValid() {
		return nil, fmt.Errorf("invalid registry mode %q", opts.Mode)
	}

	s := &ConversationStore{
		mode:  opts.Mode,
		index: make(map[string]int),
	}

	d, err := newDispatcher(system, StoreName, opts, s.apply)
	if err != nil {
		return nil, err
	}
	s.dispatcher = d

	return s, nil
}

// Mode returns the mode the store was created with.
func (s *ConversationStore) Mode() Mode {
	return s.mode
}

// Store queues a copy of conversation for storage. The returned error
// only reports submission failures.
func (s *ConversationStore) Store(conversation model.Conversation) error {
	return s.submit(storeConversation{conversation: conversation.Clone()})
}

// StoreSync stores a copy of conversation and waits for the outcome.
func (s *ConversationStore) StoreSync(ctx context.Context, conversation model.Conversation) error {
	_, err := s.call(ctx, storeConversation{conversation: conversation.Clone()})
	return err
}

// AppendMessage appends text to the stored conversation with the given id.
func (s *ConversationStore) AppendMessage(ctx context.Context, id, text string) error {
	_, err := s.call(ctx, appendMessage{id: id, text: text})
	return err
}

// List returns copies of the stored conversations in storage order.
func (s *ConversationStore) List(ctx context.Context) ([]model.Conversation, error) {
	result, err := s.call(ctx, listConversations{})
	if err != nil {
		return nil, err
	}
	return result.([]model.Conversation), nil
}

// FindByID returns a copy of the first conversation stored under id.
func (s *ConversationStore) FindByID(ctx context.Context, id string) (model.Conversation, error) {
	result, err := s.call(ctx, findConversation{id: id})
	if err != nil {
		return model.Conversation{}, err
	}
	return result.(model.Conversation), nil
}

// Count returns the number of stored conversations.
func (s *ConversationStore) Count(ctx context.Context) (int, error) {
	result, err := s.call(ctx, countConversations{})
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}

func (s *ConversationStore) apply(ctx context.Context, cmd interface{}) (interface{}, error) {
	switch c := cmd.(type) {
	case storeConversation:
		return nil, s.store(c.conversation)
	case appendMessage:
		i, ok := s.index[c.id]
		if !ok {
			return nil, fmt.Errorf("conversation %q: %w", c.id, ErrNotFound)
		}
		s.conversations[i].Append(c.text)
		return nil, nil
	case listConversations:
		out := make([]model.Conversation, len(s.conversations))
		for i, conv := range s.conversations {
			out[i] = conv.Clone()
		}
		return out, nil
	case findConversation:
		i, ok := s.index[c.id]
		if !ok {
			return nil, fmt.Errorf("conversation %q: %w", c.id, ErrNotFound)
		}
		return s.conversations[i].Clone(), nil
	case countConversations:
		return len(s.conversations), nil
	default:
		return nil, fmt.Errorf("%s: %w: %T", StoreName, core.ErrUnknownCommand, cmd)
	}
}

func (s *ConversationStore) store(conversation model.Conversation) error {
	_, seen := s.index[conversation.ID]

	if s.mode == ModeStrict {
		if err := conversation.Validate(); err != nil {
			return fmt.Errorf("store conversation %q: %w", conversation.ID, err)
		}
		if seen {
			return fmt.Errorf("store conversation %q: %w", conversation.ID, ErrDuplicateIdentifier)
		}
	}

	if !seen {
		s.index[conversation.ID] = len(s.conversations)
	}
	s.conversations = append(s.conversations, conversation)

	s.logger.Debug("conversation stored", "id", conversation.ID, "created_at", conversation.CreatedAt, "total", len(s.conversations))
	return nil
}
