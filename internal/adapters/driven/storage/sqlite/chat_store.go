package sqlite

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// chatStore implements driven.ChatStore.
type chatStore struct {
	store *Store
}

var _ driven.ChatStore = (*chatStore)(nil)

// SaveChat creates or replaces a chat and its messages.
// A chat ID owned by another user is reported as not found.
func (s *chatStore) SaveChat(ctx context.Context, chat *domain.Chat) error {
	if chat == nil || chat.ID == "" || chat.OwnerID == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `
		INSERT INTO chats (id, owner_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			updated_at = excluded.updated_at
		WHERE chats.owner_id = excluded.owner_id
	`, chat.ID, chat.OwnerID, chat.Name, utc(chat.CreatedAt), utc(chat.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving chat: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE chat_id = ?", chat.ID); err != nil {
		return fmt.Errorf("clearing messages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (chat_id, position, role, content, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, msg := range chat.Messages {
		if _, err := stmt.ExecContext(ctx, chat.ID, i, msg.Role, msg.Content, utc(msg.Timestamp)); err != nil {
			return fmt.Errorf("saving message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetChat returns a chat with its messages.
func (s *chatStore) GetChat(ctx context.Context, id, ownerID string) (*domain.Chat, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, created_at, updated_at
		FROM chats WHERE id = ? AND owner_id = ?
	`, id, ownerID)

	chat, err := scanChat(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT role, content, timestamp FROM messages
		WHERE chat_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.Role, &msg.Content, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		chat.Messages = append(chat.Messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	return chat, nil
}

// ListChats returns the owner's chats, most recently updated first.
// Messages are not loaded.
func (s *chatStore) ListChats(ctx context.Context, ownerID string) ([]domain.Chat, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, owner_id, name, created_at, updated_at
		FROM chats WHERE owner_id = ?
		ORDER BY updated_at DESC, id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying chats: %w", err)
	}
	defer rows.Close()

	var chats []domain.Chat //nolint:prealloc // size unknown from query
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, *chat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chats: %w", err)
	}

	return chats, nil
}

// DeleteChat removes a chat and its messages.
func (s *chatStore) DeleteChat(ctx context.Context, id, ownerID string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM chats WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting chat: %w", err)
	}
	return requireAffected(res)
}

func scanChat(row rowScanner) (*domain.Chat, error) {
	var chat domain.Chat
	if err := row.Scan(&chat.ID, &chat.OwnerID, &chat.Name, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chat: %w", err)
	}
	return &chat, nil
}
