// Package mongo stores documents, chats and users in MongoDB.
//
// Documents keep the hosted application's layout: one record per upload
// in the documents collection, with the extracted text and every chunk
// ({text, index, startPos, endPos, embedding}) embedded in it.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/custodia-labs/docchat/internal/adapters/driven/storage"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Collection names.
const (
	documentsCollection = "documents"
	chatsCollection     = "chats"
	usersCollection     = "users"
)

// connectTimeout bounds the initial connection and ping.
const connectTimeout = 10 * time.Second

// Store is a MongoDB-backed implementation of the document, chat and user stores.
// The client connects on first use and is shared by all three stores.
type Store struct {
	client   *storage.Lazy[*mongo.Client]
	database string
}

// NewStore creates a store for the given connection URI and database.
// No connection is made until the first operation.
func NewStore(uri, database string) (*Store, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: mongo uri is required", domain.ErrInvalidInput)
	}
	if database == "" {
		database = domain.DefaultMongoDatabase
	}

	s := &Store{database: database}
	s.client = storage.NewLazy(
		func(ctx context.Context) (*mongo.Client, error) {
			return connect(ctx, uri, database)
		},
		func(ctx context.Context, c *mongo.Client) error {
			return c.Disconnect(ctx)
		},
	)
	return s, nil
}

// connect dials MongoDB, checks the connection and ensures indexes.
func connect(ctx context.Context, uri, database string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}
	if err := ensureIndexes(ctx, client.Database(database)); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(documentsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isActive", Value: 1}, {Key: "uploadedAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "checksum", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("creating document indexes: %w", err)
	}

	_, err = db.Collection(chatsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("creating chat indexes: %w", err)
	}
	return nil
}

// Close disconnects the client if it was connected.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Close(ctx)
}

// Ping connects if needed and checks the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	client, err := s.client.Get(ctx)
	if err != nil {
		return err
	}
	return client.Ping(ctx, readpref.Primary())
}

// DocumentStore returns a DocumentStore backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// ChatStore returns a ChatStore backed by this store.
func (s *Store) ChatStore() driven.ChatStore {
	return &chatStore{store: s}
}

// UserStore returns a UserStore backed by this store.
func (s *Store) UserStore() driven.UserStore {
	return &userStore{store: s}
}

func (s *Store) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	client, err := s.client.Get(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(s.database).Collection(name), nil
}

// idFilter matches a record by ID. Records created by the original web
// application use ObjectIDs; records created here use UUID strings.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{oid, id}}}
	}
	return bson.M{"_id": id}
}

// idString converts a decoded _id to its string form.
func idString(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

// notFound maps a missing record to domain.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	return err
}
