package domain

import "time"

// Message roles understood by LLM providers.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// DefaultChatName is given to chats created without a name.
const DefaultChatName = "New Chat"

// Chat is a conversation owned by a user.
type Chat struct {
	// ID is the unique identifier for this chat.
	ID string

	// OwnerID is the user the chat belongs to.
	OwnerID string

	// Name is the display name.
	Name string

	// Messages is the conversation history, oldest first.
	Messages []Message

	// CreatedAt is when the chat was created.
	CreatedAt time.Time

	// UpdatedAt is when the chat last changed.
	UpdatedAt time.Time
}

// Message is one turn in a chat.
type Message struct {
	Role      string
	Content   string
	Timestamp time.Time
}

// LastMessage returns the most recent message, or nil for an empty chat.
func (c *Chat) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}
