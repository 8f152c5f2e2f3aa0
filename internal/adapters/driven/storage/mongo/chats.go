package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

type chatRecord struct {
	ID        any             `bson:"_id"`
	UserID    string          `bson:"userId"`
	Name      string          `bson:"name"`
	Messages  []messageRecord `bson:"messages"`
	CreatedAt time.Time       `bson:"createdAt"`
	UpdatedAt time.Time       `bson:"updatedAt"`
}

type messageRecord struct {
	Role      string    `bson:"role"`
	Content   string    `bson:"content"`
	Timestamp time.Time `bson:"timestamp"`
}

func toChatRecord(chat *domain.Chat) chatRecord {
	messages := make([]messageRecord, len(chat.Messages))
	for i, m := range chat.Messages {
		messages[i] = messageRecord{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp.UTC()}
	}
	return chatRecord{
		ID:        chat.ID,
		UserID:    chat.OwnerID,
		Name:      chat.Name,
		Messages:  messages,
		CreatedAt: chat.CreatedAt.UTC(),
		UpdatedAt: chat.UpdatedAt.UTC(),
	}
}

func (r chatRecord) toDomain() domain.Chat {
	chat := domain.Chat{
		ID:        idString(r.ID),
		OwnerID:   r.UserID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	for _, m := range r.Messages {
		chat.Messages = append(chat.Messages, domain.Message{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp})
	}
	return chat
}

// chatStore implements driven.ChatStore.
type chatStore struct {
	store *Store
}

var _ driven.ChatStore = (*chatStore)(nil)

// SaveChat creates or replaces a chat. A chat ID owned by another user
// is reported as not found.
func (s *chatStore) SaveChat(ctx context.Context, chat *domain.Chat) error {
	if chat == nil || chat.ID == "" || chat.OwnerID == "" {
		return domain.ErrInvalidInput
	}
	coll, err := s.store.collection(ctx, chatsCollection)
	if err != nil {
		return err
	}

	filter := idFilter(chat.ID)
	filter["userId"] = chat.OwnerID

	_, err = coll.ReplaceOne(ctx, filter, toChatRecord(chat), options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// The ID exists under another owner
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("saving chat: %w", err)
	}
	return nil
}

// GetChat returns a chat with its messages.
func (s *chatStore) GetChat(ctx context.Context, id, ownerID string) (*domain.Chat, error) {
	coll, err := s.store.collection(ctx, chatsCollection)
	if err != nil {
		return nil, err
	}

	filter := idFilter(id)
	filter["userId"] = ownerID

	var rec chatRecord
	if err := coll.FindOne(ctx, filter).Decode(&rec); err != nil {
		return nil, notFound(err)
	}
	chat := rec.toDomain()
	return &chat, nil
}

// ListChats returns the owner's chats, most recently updated first, without messages.
func (s *chatStore) ListChats(ctx context.Context, ownerID string) ([]domain.Chat, error) {
	coll, err := s.store.collection(ctx, chatsCollection)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetProjection(bson.M{"messages": 0}).
		SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	cursor, err := coll.Find(ctx, bson.M{"userId": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("querying chats: %w", err)
	}

	var records []chatRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decoding chats: %w", err)
	}

	chats := make([]domain.Chat, len(records))
	for i, rec := range records {
		chats[i] = rec.toDomain()
	}
	return chats, nil
}

// DeleteChat removes a chat.
func (s *chatStore) DeleteChat(ctx context.Context, id, ownerID string) error {
	coll, err := s.store.collection(ctx, chatsCollection)
	if err != nil {
		return err
	}

	filter := idFilter(id)
	filter["userId"] = ownerID

	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("deleting chat: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
