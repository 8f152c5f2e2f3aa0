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

// documentRecord is the stored form of a document.
type documentRecord struct {
	ID               any           `bson:"_id"`
	UserID           string        `bson:"userId"`
	Filename         string        `bson:"filename"`
	OriginalFilename string        `bson:"originalFilename"`
	FilePath         string        `bson:"filepath,omitempty"`
	FileSize         int64         `bson:"fileSize"`
	MIMEType         string        `bson:"mimeType"`
	ExtractedText    string        `bson:"extractedText"`
	Checksum         string        `bson:"checksum,omitempty"`
	Vocabulary       []string      `bson:"vocabulary,omitempty"`
	Chunks           []chunkRecord `bson:"chunks"`
	UploadedAt       time.Time     `bson:"uploadedAt"`
	IsActive         bool          `bson:"isActive"`
}

// chunkRecord is the stored form of a chunk.
type chunkRecord struct {
	Text      string    `bson:"text"`
	Index     int       `bson:"index"`
	StartPos  int       `bson:"startPos"`
	EndPos    int       `bson:"endPos"`
	Embedding []float64 `bson:"embedding"`
}

// listProjection leaves out the large fields of a document.
var listProjection = bson.M{"extractedText": 0, "chunks.embedding": 0, "chunks.text": 0}

func toDocumentRecord(doc *domain.Document) documentRecord {
	chunks := make([]chunkRecord, len(doc.Chunks))
	for i, c := range doc.Chunks {
		embedding := c.Embedding
		if embedding == nil {
			embedding = []float64{}
		}
		chunks[i] = chunkRecord{
			Text:      c.Text,
			Index:     c.Index,
			StartPos:  c.StartPos,
			EndPos:    c.EndPos,
			Embedding: embedding,
		}
	}
	return documentRecord{
		ID:               doc.ID,
		UserID:           doc.OwnerID,
		Filename:         doc.Filename,
		OriginalFilename: doc.Filename,
		FileSize:         doc.Size,
		MIMEType:         doc.MIMEType,
		ExtractedText:    doc.Content,
		Checksum:         doc.Checksum,
		Vocabulary:       doc.Vocabulary,
		Chunks:           chunks,
		UploadedAt:       doc.UploadedAt.UTC(),
		IsActive:         true,
	}
}

// toDomain converts a record. withChunks is false for list projections.
func (r documentRecord) toDomain(withChunks bool) domain.Document {
	filename := r.OriginalFilename
	if filename == "" {
		filename = r.Filename
	}
	doc := domain.Document{
		ID:         idString(r.ID),
		OwnerID:    r.UserID,
		Filename:   filename,
		MIMEType:   r.MIMEType,
		Size:       r.FileSize,
		Content:    r.ExtractedText,
		Checksum:   r.Checksum,
		Vocabulary: r.Vocabulary,
		ChunkCount: len(r.Chunks),
		UploadedAt: r.UploadedAt,
		Active:     r.IsActive,
	}
	if withChunks {
		doc.Chunks = make([]domain.Chunk, len(r.Chunks))
		for i, c := range r.Chunks {
			doc.Chunks[i] = domain.Chunk{
				Text:      c.Text,
				Index:     c.Index,
				StartPos:  c.StartPos,
				EndPos:    c.EndPos,
				Embedding: c.Embedding,
			}
		}
	}
	return doc
}

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// CreateDocument inserts a document with its embedded chunks.
// A single insert is atomic, so chunks are never visible without the document.
func (s *documentStore) CreateDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" || doc.OwnerID == "" {
		return domain.ErrInvalidInput
	}
	coll, err := s.store.collection(ctx, documentsCollection)
	if err != nil {
		return err
	}
	if _, err := coll.InsertOne(ctx, toDocumentRecord(doc)); err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

// FindDocument returns an active document with its chunks.
func (s *documentStore) FindDocument(ctx context.Context, id, ownerID string) (*domain.Document, error) {
	coll, err := s.store.collection(ctx, documentsCollection)
	if err != nil {
		return nil, err
	}

	filter := idFilter(id)
	filter["userId"] = ownerID
	filter["isActive"] = true

	var rec documentRecord
	if err := coll.FindOne(ctx, filter).Decode(&rec); err != nil {
		return nil, notFound(err)
	}
	doc := rec.toDomain(true)
	return &doc, nil
}

// FindDocumentByChecksum returns the owner's newest active document with the checksum.
func (s *documentStore) FindDocumentByChecksum(ctx context.Context, ownerID, checksum string) (*domain.Document, error) {
	coll, err := s.store.collection(ctx, documentsCollection)
	if err != nil {
		return nil, err
	}

	opts := options.FindOne().
		SetProjection(listProjection).
		SetSort(bson.D{{Key: "uploadedAt", Value: -1}})

	var rec documentRecord
	filter := bson.M{"userId": ownerID, "checksum": checksum, "isActive": true}
	if err := coll.FindOne(ctx, filter, opts).Decode(&rec); err != nil {
		return nil, notFound(err)
	}
	doc := rec.toDomain(false)
	return &doc, nil
}

// ListDocuments returns the owner's active documents, newest first.
func (s *documentStore) ListDocuments(ctx context.Context, ownerID string) ([]domain.Document, error) {
	coll, err := s.store.collection(ctx, documentsCollection)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetProjection(listProjection).
		SetSort(bson.D{{Key: "uploadedAt", Value: -1}})

	cursor, err := coll.Find(ctx, bson.M{"userId": ownerID, "isActive": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}

	var records []documentRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decoding documents: %w", err)
	}

	docs := make([]domain.Document, len(records))
	for i, rec := range records {
		docs[i] = rec.toDomain(false)
	}
	return docs, nil
}

// DeactivateDocument soft-deletes a document.
func (s *documentStore) DeactivateDocument(ctx context.Context, id, ownerID string) error {
	coll, err := s.store.collection(ctx, documentsCollection)
	if err != nil {
		return err
	}

	filter := idFilter(id)
	filter["userId"] = ownerID
	filter["isActive"] = true

	res, err := coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"isActive": false}})
	if err != nil {
		return fmt.Errorf("deactivating document: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteDocument removes a document and its chunks.
func (s *documentStore) DeleteDocument(ctx context.Context, id, ownerID string) error {
	coll, err := s.store.collection(ctx, documentsCollection)
	if err != nil {
		return err
	}

	filter := idFilter(id)
	filter["userId"] = ownerID

	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
