package sqlite

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// userStore implements driven.UserStore.
type userStore struct {
	store *Store
}

var _ driven.UserStore = (*userStore)(nil)

// SaveUser creates or updates a user. CreatedAt is kept from the first save.
func (s *userStore) SaveUser(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			image_url = excluded.image_url,
			updated_at = excluded.updated_at
	`, user.ID, user.Email, user.Name, user.ImageURL, utc(user.CreatedAt), utc(user.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

// GetUser returns a user by ID.
func (s *userStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, email, name, image_url, created_at, updated_at
		FROM users WHERE id = ?
	`, id)

	var user domain.User
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.ImageURL,
		&user.CreatedAt, &user.UpdatedAt); err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &user, nil
}

// DeleteUser removes a user.
func (s *userStore) DeleteUser(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return requireAffected(res)
}
