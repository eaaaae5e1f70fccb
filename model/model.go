// Package model defines the chatbot and conversation records tracked by the
// registries.
//
// Records are plain values. A driver builds one, stamps an identifier on it
// and hands it to the owning registry; the registry keeps its own copy.
package model

import "errors"

var (
	// ErrMissingID is returned when a record has not been assigned an identifier.
	ErrMissingID = errors.New("identifier not assigned")

	// ErrEmptyName is returned when a chatbot has no name.
	ErrEmptyName = errors.New("chatbot name is empty")
)

// Chatbot is a registered bot identity.
type Chatbot struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// NewChatbot returns a chatbot with the given name and no identifier.
func NewChatbot(name string) Chatbot {
	return Chatbot{Name: name}
}

// SetID assigns the chatbot identifier.
func (c *Chatbot) SetID(id string) {
	c.ID = id
}

// Validate reports whether the chatbot is ready to be registered.
func (c Chatbot) Validate() error {
	if c.ID == "" {
		return ErrMissingID
	}
	if c.Name == "" {
		return ErrEmptyName
	}
	return nil
}

// Conversation is a timestamped, append-only list of messages.
type Conversation struct {
	ID        string   `json:"id" yaml:"id"`
	CreatedAt int64    `json:"created_at" yaml:"created_at"`
	Messages  []string `json:"messages" yaml:"messages"`
}

// NewConversation returns an empty conversation created at createdAt
// (Unix seconds) with no identifier.
func NewConversation(createdAt int64) Conversation {
	return Conversation{CreatedAt: createdAt, Messages: []string{}}
}

// SetID assigns the conversation identifier.
func (c *Conversation) SetID(id string) {
	c.ID = id
}

// Append adds a message to the end of the conversation.
func (c *Conversation) Append(text string) {
	c.Messages = append(c.Messages, text)
}

// Clone returns a copy that shares no memory with c.
func (c Conversation) Clone() Conversation {
	out := c
	out.Messages = make([]string, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}

// Validate reports whether the conversation is ready to be stored.
func (c Conversation) Validate() error {
	if c.ID == "" {
		return ErrMissingID
	}
	return nil
}
