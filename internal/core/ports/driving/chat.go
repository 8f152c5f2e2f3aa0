package driving

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// ChatService manages conversations and generates replies.
type ChatService interface {
	// Create starts an empty chat. An empty name uses domain.DefaultChatName.
	Create(ctx context.Context, ownerID, name string) (*domain.Chat, error)

	// List returns the user's chats, most recent first.
	List(ctx context.Context, ownerID string) ([]domain.Chat, error)

	// Get returns a chat with its messages.
	Get(ctx context.Context, id, ownerID string) (*domain.Chat, error)

	// Rename changes a chat's display name.
	Rename(ctx context.Context, id, ownerID, name string) (*domain.Chat, error)

	// Delete removes a chat.
	Delete(ctx context.Context, id, ownerID string) error

	// Send appends the prompt, asks the LLM and appends its reply.
	// When DocumentID is set the prompt is grounded in retrieved context.
	Send(ctx context.Context, req SendRequest) (*SendResult, error)
}

// SendRequest is a user turn in a chat.
type SendRequest struct {
	ChatID     string
	OwnerID    string
	Prompt     string
	DocumentID string
}

// SendResult is the outcome of a chat turn.
type SendResult struct {
	// Reply is the assistant message that was appended.
	Reply domain.Message

	// Grounded is true when document context was sent with the prompt.
	Grounded bool
}
