package driven

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// DocumentStore persists uploaded documents with their chunks.
// Every lookup is scoped to an owner and only sees active documents.
type DocumentStore interface {
	// CreateDocument stores a document and all of its chunks atomically.
	// A reader never observes the document without its full chunk set.
	CreateDocument(ctx context.Context, doc *domain.Document) error

	// FindDocument returns an active document with its chunks.
	// Returns domain.ErrNotFound when missing, inactive or owned by someone else.
	FindDocument(ctx context.Context, id, ownerID string) (*domain.Document, error)

	// FindDocumentByChecksum returns the owner's active document with the
	// given content checksum, without chunks.
	FindDocumentByChecksum(ctx context.Context, ownerID, checksum string) (*domain.Document, error)

	// ListDocuments returns the owner's active documents, newest first.
	// Content and chunks are omitted; ChunkCount is set.
	ListDocuments(ctx context.Context, ownerID string) ([]domain.Document, error)

	// DeactivateDocument soft-deletes a document.
	DeactivateDocument(ctx context.Context, id, ownerID string) error

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id, ownerID string) error
}

// ChatStore persists chats with their messages.
type ChatStore interface {
	// SaveChat creates or replaces a chat and its messages.
	SaveChat(ctx context.Context, chat *domain.Chat) error

	// GetChat returns a chat owned by ownerID.
	GetChat(ctx context.Context, id, ownerID string) (*domain.Chat, error)

	// ListChats returns the owner's chats, most recently updated first.
	ListChats(ctx context.Context, ownerID string) ([]domain.Chat, error)

	// DeleteChat removes a chat.
	DeleteChat(ctx context.Context, id, ownerID string) error
}

// UserStore persists users mirrored from the identity provider.
type UserStore interface {
	// SaveUser creates or updates a user.
	SaveUser(ctx context.Context, user *domain.User) error

	// GetUser returns a user by ID.
	GetUser(ctx context.Context, id string) (*domain.User, error)

	// DeleteUser removes a user.
	DeleteUser(ctx context.Context, id string) error
}
