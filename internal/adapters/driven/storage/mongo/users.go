package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

type userRecord struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Name      string    `bson:"name"`
	ImageURL  string    `bson:"imageUrl,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// userStore implements driven.UserStore.
type userStore struct {
	store *Store
}

var _ driven.UserStore = (*userStore)(nil)

// SaveUser upserts a user. createdAt is only written on insert.
func (s *userStore) SaveUser(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidInput
	}
	coll, err := s.store.collection(ctx, usersCollection)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"email":     user.Email,
			"name":      user.Name,
			"imageUrl":  user.ImageURL,
			"updatedAt": user.UpdatedAt.UTC(),
		},
		"$setOnInsert": bson.M{"createdAt": user.CreatedAt.UTC()},
	}
	if _, err := coll.UpdateOne(ctx, bson.M{"_id": user.ID}, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

// GetUser returns a user by ID.
func (s *userStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	coll, err := s.store.collection(ctx, usersCollection)
	if err != nil {
		return nil, err
	}

	var rec userRecord
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		return nil, notFound(err)
	}
	return &domain.User{
		ID:        rec.ID,
		Email:     rec.Email,
		Name:      rec.Name,
		ImageURL:  rec.ImageURL,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

// DeleteUser removes a user.
func (s *userStore) DeleteUser(ctx context.Context, id string) error {
	coll, err := s.store.collection(ctx, usersCollection)
	if err != nil {
		return err
	}

	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
