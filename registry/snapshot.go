package registry

import (
	"context"
	"fmt"

	"github.com/najoast/chatreg/model"
)

// Snapshot is a point-in-time copy of both registries, for dumping.
// The two halves are read independently; there is no ordering between them.
type Snapshot struct {
	Chatbots      []model.Chatbot      `json:"chatbots" yaml:"chatbots"`
	Conversations []model.Conversation `json:"conversations" yaml:"conversations"`
}

// TakeSnapshot reads both registries.
func TakeSnapshot(ctx context.Context, tracker *ChatbotTracker, store *ConversationStore) (Snapshot, error) {
	chatbots, err := tracker.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing chatbots: %w", err)
	}

	conversations, err := store.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing conversations: %w", err)
	}

	return Snapshot{Chatbots: chatbots, Conversations: conversations}, nil
}
