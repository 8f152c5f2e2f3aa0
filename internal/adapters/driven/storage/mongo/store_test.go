package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

func TestNewStore_RequiresURI(t *testing.T) {
	_, err := NewStore("", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewStore_DoesNotConnect(t *testing.T) {
	store, err := NewStore("mongodb://127.0.0.1:1", "")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultMongoDatabase, store.database)
	assert.False(t, store.client.Ready())
	assert.NoError(t, store.Close())
}

func TestIDFilter(t *testing.T) {
	assert.Equal(t, bson.M{"_id": "3f2a-uuid"}, idFilter("3f2a-uuid"))

	hex := "65f0c0ffee0000000000abcd"
	oid, err := primitive.ObjectIDFromHex(hex)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"_id": bson.M{"$in": bson.A{oid, hex}}}, idFilter(hex))
}

func TestIDString(t *testing.T) {
	oid := primitive.NewObjectID()
	assert.Equal(t, oid.Hex(), idString(oid))
	assert.Equal(t, "abc", idString("abc"))
	assert.Empty(t, idString(nil))
}

func TestDocumentRecordRoundTrip(t *testing.T) {
	uploaded := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := &domain.Document{
		ID:         "doc-1",
		OwnerID:    "user_1",
		Filename:   "manual.pdf",
		MIMEType:   "application/pdf",
		Size:       2048,
		Content:    "full text",
		Checksum:   "abc",
		Vocabulary: []string{"manual"},
		Chunks: []domain.Chunk{
			{Text: "full text", Index: 0, StartPos: 0, EndPos: 9, Embedding: []float64{0.5}},
		},
		UploadedAt: uploaded,
	}

	rec := toDocumentRecord(doc)
	assert.Equal(t, "user_1", rec.UserID)
	assert.Equal(t, "manual.pdf", rec.OriginalFilename)
	assert.Equal(t, "full text", rec.ExtractedText)
	assert.True(t, rec.IsActive)

	// Through BSON, as the driver would store it
	raw, err := bson.Marshal(rec)
	require.NoError(t, err)
	var decoded documentRecord
	require.NoError(t, bson.Unmarshal(raw, &decoded))

	full := decoded.toDomain(true)
	assert.Equal(t, "doc-1", full.ID)
	assert.Equal(t, "full text", full.Content)
	assert.Equal(t, 1, full.ChunkCount)
	require.Len(t, full.Chunks, 1)
	assert.Equal(t, []float64{0.5}, full.Chunks[0].Embedding)
	assert.True(t, uploaded.Equal(full.UploadedAt))

	listed := decoded.toDomain(false)
	assert.Nil(t, listed.Chunks)
	assert.Equal(t, 1, listed.ChunkCount)
}

func TestDocumentRecord_AlwaysWritesEmbedding(t *testing.T) {
	doc := &domain.Document{
		ID:         "doc-2",
		OwnerID:    "user_1",
		Filename:   "numbers.txt",
		Vocabulary: []string{},
		Chunks: []domain.Chunk{
			{Text: "12 34 56 78 90", EndPos: 14, Embedding: []float64{}},
			{Text: "98 76 54 32 10", StartPos: 10, EndPos: 24},
		},
	}

	raw, err := bson.Marshal(toDocumentRecord(doc))
	require.NoError(t, err)

	for _, index := range []string{"0", "1"} {
		val, err := bson.Raw(raw).LookupErr("chunks", index, "embedding")
		require.NoError(t, err, "chunk %s", index)
		assert.Equal(t, bsontype.Array, val.Type, "chunk %s", index)
	}
}

func TestDocumentRecord_LegacyLayout(t *testing.T) {
	// A record written by the original web application
	oid := primitive.NewObjectID()
	raw, err := bson.Marshal(bson.M{
		"_id":              oid,
		"userId":           "user_1",
		"filename":         "1700000000-guide.docx",
		"originalFilename": "guide.docx",
		"filepath":         "uploads/1700000000-guide.docx",
		"fileSize":         int64(1234),
		"mimeType":         "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"extractedText":    "Section one.",
		"chunks": bson.A{
			bson.M{"text": "Section one.", "index": 0, "startPos": 0, "endPos": 12, "embedding": bson.A{0.5, 0.0}},
		},
		"uploadedAt": time.Now(),
		"isActive":   true,
	})
	require.NoError(t, err)

	var rec documentRecord
	require.NoError(t, bson.Unmarshal(raw, &rec))
	doc := rec.toDomain(true)

	assert.Equal(t, oid.Hex(), doc.ID)
	assert.Equal(t, "guide.docx", doc.Filename)
	assert.Nil(t, doc.Vocabulary)
	require.Len(t, doc.Chunks, 1)
	assert.Equal(t, []float64{0.5, 0}, doc.Chunks[0].Embedding)
}

func TestChatRecordRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	chat := &domain.Chat{
		ID:      "chat-1",
		OwnerID: "user_1",
		Name:    "New Chat",
		Messages: []domain.Message{
			{Role: domain.RoleUser, Content: "hi", Timestamp: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	raw, err := bson.Marshal(toChatRecord(chat))
	require.NoError(t, err)
	var rec chatRecord
	require.NoError(t, bson.Unmarshal(raw, &rec))

	got := rec.toDomain()
	assert.Equal(t, *chat, got)
}

// TestStore_Integration runs against a live server when DOCCHAT_TEST_MONGODB_URI is set.
func TestStore_Integration(t *testing.T) {
	uri := os.Getenv("DOCCHAT_TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("DOCCHAT_TEST_MONGODB_URI not set")
	}

	store, err := NewStore(uri, "docchat_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		client, err := store.client.Get(context.Background())
		if err == nil {
			_ = client.Database(store.database).Drop(context.Background())
		}
		_ = store.Close()
	})

	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))

	docs := store.DocumentStore()
	doc := &domain.Document{
		ID: uuid.NewString(), OwnerID: "user_1", Filename: "a.txt", MIMEType: "text/plain",
		Content: "Cats are mammals.", Checksum: "sum",
		Chunks:     []domain.Chunk{{Text: "Cats are mammals.", EndPos: 17, Embedding: []float64{1}}},
		UploadedAt: time.Now(),
	}
	require.NoError(t, docs.CreateDocument(ctx, doc))

	found, err := docs.FindDocument(ctx, doc.ID, "user_1")
	require.NoError(t, err)
	assert.Len(t, found.Chunks, 1)

	_, err = docs.FindDocument(ctx, doc.ID, "user_2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	byChecksum, err := docs.FindDocumentByChecksum(ctx, "user_1", "sum")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, byChecksum.ID)

	require.NoError(t, docs.DeactivateDocument(ctx, doc.ID, "user_1"))
	list, err := docs.ListDocuments(ctx, "user_1")
	require.NoError(t, err)
	assert.Empty(t, list)

	chats := store.ChatStore()
	chat := &domain.Chat{ID: uuid.NewString(), OwnerID: "user_1", Name: "c", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, chats.SaveChat(ctx, chat))
	foreign := *chat
	foreign.OwnerID = "user_2"
	assert.ErrorIs(t, chats.SaveChat(ctx, &foreign), domain.ErrNotFound)

	users := store.UserStore()
	require.NoError(t, users.SaveUser(ctx, &domain.User{ID: "user_1", Email: "a@example.com"}))
	user, err := users.GetUser(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)
}
