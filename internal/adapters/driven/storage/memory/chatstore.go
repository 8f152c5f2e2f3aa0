package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure ChatStore implements the interface.
var _ driven.ChatStore = (*ChatStore)(nil)

// ChatStore is an in-memory implementation of driven.ChatStore.
type ChatStore struct {
	mu    sync.RWMutex
	chats map[string]domain.Chat
}

// NewChatStore creates a new in-memory chat store.
func NewChatStore() *ChatStore {
	return &ChatStore{
		chats: make(map[string]domain.Chat),
	}
}

// SaveChat creates or replaces a chat.
func (s *ChatStore) SaveChat(_ context.Context, chat *domain.Chat) error {
	if chat == nil || chat.ID == "" || chat.OwnerID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.chats[chat.ID]; ok && existing.OwnerID != chat.OwnerID {
		return domain.ErrNotFound
	}
	stored := *chat
	stored.Messages = append([]domain.Message(nil), chat.Messages...)
	s.chats[chat.ID] = stored
	return nil
}

// GetChat returns a chat owned by ownerID.
func (s *ChatStore) GetChat(_ context.Context, id, ownerID string) (*domain.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chat, ok := s.chats[id]
	if !ok || chat.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	chat.Messages = append([]domain.Message(nil), chat.Messages...)
	return &chat, nil
}

// ListChats returns the owner's chats, most recently updated first, without messages.
func (s *ChatStore) ListChats(_ context.Context, ownerID string) ([]domain.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Chat
	for id := range s.chats {
		chat := s.chats[id]
		if chat.OwnerID == ownerID {
			chat.Messages = nil
			result = append(result, chat)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

// DeleteChat removes a chat.
func (s *ChatStore) DeleteChat(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[id]
	if !ok || chat.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(s.chats, id)
	return nil
}
