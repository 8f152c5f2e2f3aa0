package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ChatService manages conversations and asks the LLM for replies.
type ChatService struct {
	chatStore driven.ChatStore
	llm       driven.LLMService
	retrieval driving.RetrievalService
	prompts   driven.PromptStore
	options   driven.ChatOptions
	now       func() time.Time
	newID     func() string
}

// ChatOption configures a ChatService.
type ChatOption func(*ChatService)

// WithPromptStore loads the RAG template from store instead of the built-in default.
func WithPromptStore(store driven.PromptStore) ChatOption {
	return func(s *ChatService) {
		s.prompts = store
	}
}

// WithChatOptions sets the generation parameters passed to the LLM.
func WithChatOptions(opts driven.ChatOptions) ChatOption {
	return func(s *ChatService) {
		s.options = opts
	}
}

// WithChatClock sets the message timestamp source.
func WithChatClock(now func() time.Time) ChatOption {
	return func(s *ChatService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewChatService creates a chat service. llm may be nil, in which case
// Send fails with domain.ErrLLMUnavailable.
func NewChatService(
	chatStore driven.ChatStore,
	llm driven.LLMService,
	retrieval driving.RetrievalService,
	opts ...ChatOption,
) *ChatService {
	s := &ChatService{
		chatStore: chatStore,
		llm:       llm,
		retrieval: retrieval,
		options: driven.ChatOptions{
			MaxTokens:   domain.DefaultMaxTokens,
			Temperature: domain.DefaultTemperature,
		},
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts an empty chat.
func (s *ChatService) Create(ctx context.Context, ownerID, name string) (*domain.Chat, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: chat requires an owner", domain.ErrInvalidInput)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = domain.DefaultChatName
	}

	now := s.now().UTC()
	chat := &domain.Chat{
		ID:        s.newID(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.chatStore.SaveChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return chat, nil
}

// List returns the user's chats without messages, most recent first.
func (s *ChatService) List(ctx context.Context, ownerID string) ([]domain.Chat, error) {
	return s.chatStore.ListChats(ctx, ownerID)
}

// Get returns a chat with its messages.
func (s *ChatService) Get(ctx context.Context, id, ownerID string) (*domain.Chat, error) {
	return s.chatStore.GetChat(ctx, id, ownerID)
}

// Rename changes a chat's display name.
func (s *ChatService) Rename(ctx context.Context, id, ownerID, name string) (*domain.Chat, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: chat name must not be empty", domain.ErrInvalidInput)
	}

	chat, err := s.chatStore.GetChat(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	chat.Name = name
	chat.UpdatedAt = s.now().UTC()

	if err := s.chatStore.SaveChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("rename chat: %w", err)
	}
	return chat, nil
}

// Delete removes a chat.
func (s *ChatService) Delete(ctx context.Context, id, ownerID string) error {
	return s.chatStore.DeleteChat(ctx, id, ownerID)
}

// Send appends the prompt, asks the LLM and appends its reply. The chat
// is only saved once the reply has arrived.
func (s *ChatService) Send(ctx context.Context, req driving.SendRequest) (*driving.SendResult, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt must not be empty", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	chat, err := s.chatStore.GetChat(ctx, req.ChatID, req.OwnerID)
	if err != nil {
		return nil, err
	}

	chat.Messages = append(chat.Messages, domain.Message{
		Role:      domain.RoleUser,
		Content:   prompt,
		Timestamp: s.now().UTC(),
	})

	messages, grounded := s.buildMessages(ctx, chat, req.DocumentID, prompt)

	reply, err := s.llm.Chat(ctx, messages, s.options)
	if err != nil {
		return nil, fmt.Errorf("generate reply: %w", err)
	}

	answer := domain.Message{
		Role:      domain.RoleAssistant,
		Content:   reply,
		Timestamp: s.now().UTC(),
	}
	chat.Messages = append(chat.Messages, answer)
	chat.UpdatedAt = answer.Timestamp

	if err := s.chatStore.SaveChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("save chat: %w", err)
	}

	return &driving.SendResult{Reply: answer, Grounded: grounded}, nil
}

// buildMessages returns the LLM input. With document context the history
// is replaced by one user message built from the RAG template.
func (s *ChatService) buildMessages(
	ctx context.Context,
	chat *domain.Chat,
	documentID, prompt string,
) ([]driven.ChatMessage, bool) {
	if documentID != "" && s.retrieval != nil {
		if docContext := s.retrieval.RetrieveContext(ctx, documentID, chat.OwnerID, prompt); docContext != "" {
			return []driven.ChatMessage{{
				Role:    domain.RoleUser,
				Content: fmt.Sprintf(s.ragTemplate(), docContext, prompt),
			}}, true
		}
	}

	messages := make([]driven.ChatMessage, len(chat.Messages))
	for i, m := range chat.Messages {
		messages[i] = driven.ChatMessage{Role: m.Role, Content: m.Content}
	}
	return messages, false
}

func (s *ChatService) ragTemplate() string {
	if s.prompts == nil {
		return driven.DefaultRAGContextPrompt
	}
	template, err := s.prompts.Load(driven.PromptRAGContext)
	if err != nil {
		logger.Warn("load prompt %s: %v", driven.PromptRAGContext, err)
		return driven.DefaultRAGContextPrompt
	}
	return template
}
