package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDocument_Fields tests Document structure fields
func TestDocument_Fields(t *testing.T) {
	now := time.Now()

	doc := Document{
		ID:         "doc-123",
		OwnerID:    "user_1",
		Filename:   "guide.docx",
		MIMEType:   "text/plain",
		Size:       42,
		Content:    "hello world",
		Vocabulary: []string{"hello", "world"},
		Chunks: []Chunk{
			{Text: "hello world", Index: 0, StartPos: 0, EndPos: 11, Embedding: []float64{0.5, 0.5}},
		},
		UploadedAt: now,
		Active:     true,
	}

	assert.Equal(t, "doc-123", doc.ID)
	assert.Equal(t, "user_1", doc.OwnerID)
	require.Len(t, doc.Chunks, 1)
	assert.Len(t, doc.Chunks[0].Embedding, len(doc.Vocabulary))
	assert.True(t, doc.Active)
	assert.Equal(t, now, doc.UploadedAt)
}

// TestChunk_Len tests window length from offsets
func TestChunk_Len(t *testing.T) {
	c := Chunk{StartPos: 25, EndPos: 54}
	assert.Equal(t, 29, c.Len())
}

// TestRawDocument_Size tests byte size reporting
func TestRawDocument_Size(t *testing.T) {
	raw := &RawDocument{Content: []byte("héllo")}
	assert.Equal(t, int64(6), raw.Size())

	empty := &RawDocument{}
	assert.Equal(t, int64(0), empty.Size())
}

// TestChat_LastMessage tests last message lookup
func TestChat_LastMessage(t *testing.T) {
	chat := &Chat{Name: DefaultChatName}
	assert.Nil(t, chat.LastMessage())

	chat.Messages = []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}
	last := chat.LastMessage()
	require.NotNil(t, last)
	assert.Equal(t, RoleAssistant, last.Role)
}

// TestIdentityEvent_Variants tests that every variant satisfies the union
func TestIdentityEvent_Variants(t *testing.T) {
	events := []IdentityEvent{
		UserUpserted{User: User{ID: "u1"}, Created: true},
		UserDeleted{ID: "u1"},
		UnrecognisedEvent{Type: "session.created"},
	}

	for _, ev := range events {
		switch e := ev.(type) {
		case UserUpserted:
			assert.Equal(t, "u1", e.User.ID)
		case UserDeleted:
			assert.Equal(t, "u1", e.ID)
		case UnrecognisedEvent:
			assert.Equal(t, "session.created", e.Type)
		default:
			t.Fatalf("unexpected variant %T", e)
		}
	}
}
