package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Ensure IdentityService implements the interface.
var _ driving.IdentityService = (*IdentityService)(nil)

// IdentityService mirrors identity provider events into the user store.
type IdentityService struct {
	users driven.UserStore
	now   func() time.Time
}

// NewIdentityService creates an identity service.
func NewIdentityService(users driven.UserStore) *IdentityService {
	return &IdentityService{users: users, now: time.Now}
}

// Handle applies an identity event.
func (s *IdentityService) Handle(ctx context.Context, event domain.IdentityEvent) error {
	switch e := event.(type) {
	case domain.UserUpserted:
		if e.User.ID == "" {
			return fmt.Errorf("%w: user event without id", domain.ErrInvalidInput)
		}
		user := e.User
		now := s.now().UTC()
		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
		}
		user.UpdatedAt = now
		if err := s.users.SaveUser(ctx, &user); err != nil {
			return fmt.Errorf("save user %s: %w", user.ID, err)
		}
		if e.Created {
			logger.Info("user %s created", user.ID)
		} else {
			logger.Info("user %s updated", user.ID)
		}
		return nil

	case domain.UserDeleted:
		if e.ID == "" {
			return fmt.Errorf("%w: delete event without id", domain.ErrInvalidInput)
		}
		err := s.users.DeleteUser(ctx, e.ID)
		if errors.Is(err, domain.ErrNotFound) {
			// Deletes can arrive for users this service never saw.
			return nil
		}
		if err != nil {
			return fmt.Errorf("delete user %s: %w", e.ID, err)
		}
		logger.Info("user %s deleted", e.ID)
		return nil

	case domain.UnrecognisedEvent:
		logger.Debug("ignoring identity event %q", e.Type)
		return nil

	default:
		return fmt.Errorf("%w: unknown identity event %T", domain.ErrInvalidInput, event)
	}
}
