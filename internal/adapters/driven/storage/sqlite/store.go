package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// dbFile is the database file name inside the data directory.
const dbFile = "docchat.db"

// Store is a unified SQLite-based storage that provides access to
// all store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docchat/data/docchat.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docchat", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// ChatStore returns a ChatStore interface backed by this store.
func (s *Store) ChatStore() driven.ChatStore {
	return &chatStore{store: s}
}

// UserStore returns a UserStore interface backed by this store.
func (s *Store) UserStore() driven.UserStore {
	return &userStore{store: s}
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// CreateDocument stores a document and its chunks in one transaction.
func (s *documentStore) CreateDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" || doc.OwnerID == "" {
		return domain.ErrInvalidInput
	}

	vocabulary, err := marshalVocabulary(doc.Vocabulary)
	if err != nil {
		return err
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, owner_id, filename, mime_type, size, content, checksum,
			vocabulary, chunk_count, uploaded_at, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
	`, doc.ID, doc.OwnerID, doc.Filename, doc.MIMEType, doc.Size, doc.Content, doc.Checksum,
		vocabulary, len(doc.Chunks), utc(doc.UploadedAt))
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (document_id, position, content, start_pos, end_pos, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range doc.Chunks {
		if _, err := stmt.ExecContext(ctx, doc.ID, chunk.Index, chunk.Text,
			chunk.StartPos, chunk.EndPos, float64SliceToBytes(chunk.Embedding)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// FindDocument returns an active document with its chunks.
func (s *documentStore) FindDocument(ctx context.Context, id, ownerID string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, owner_id, filename, mime_type, size, content, checksum, vocabulary,
			chunk_count, uploaded_at, active
		FROM documents WHERE id = ? AND owner_id = ? AND active = 1
	`, id, ownerID)

	doc, err := scanDocument(row)
	if err != nil {
		return nil, err
	}

	chunks, err := s.chunks(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.Chunks = chunks
	doc.ChunkCount = len(chunks)
	return doc, nil
}

// FindDocumentByChecksum returns the owner's active document with the checksum.
func (s *documentStore) FindDocumentByChecksum(ctx context.Context, ownerID, checksum string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, owner_id, filename, mime_type, size, '', checksum, vocabulary,
			chunk_count, uploaded_at, active
		FROM documents WHERE owner_id = ? AND checksum = ? AND active = 1
		ORDER BY uploaded_at DESC LIMIT 1
	`, ownerID, checksum)

	return scanDocument(row)
}

// ListDocuments returns the owner's active documents, newest first.
func (s *documentStore) ListDocuments(ctx context.Context, ownerID string) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, owner_id, filename, mime_type, size, '', checksum, vocabulary,
			chunk_count, uploaded_at, active
		FROM documents WHERE owner_id = ? AND active = 1
		ORDER BY uploaded_at DESC, id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// DeactivateDocument soft-deletes a document.
func (s *documentStore) DeactivateDocument(ctx context.Context, id, ownerID string) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE documents SET active = 0 WHERE id = ? AND owner_id = ? AND active = 1", id, ownerID)
	if err != nil {
		return fmt.Errorf("deactivating document: %w", err)
	}
	return requireAffected(res)
}

// DeleteDocument removes a document and its chunks.
func (s *documentStore) DeleteDocument(ctx context.Context, id, ownerID string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return requireAffected(res)
}

// chunks loads a document's chunks in document order.
func (s *documentStore) chunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT position, content, start_pos, end_pos, embedding
		FROM chunks WHERE document_id = ?
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var embedding []byte
		if err := rows.Scan(&chunk.Index, &chunk.Text, &chunk.StartPos, &chunk.EndPos, &embedding); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.Embedding = bytesToFloat64Slice(embedding)
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// ==================== Helper Functions ====================

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDocument scans a document row.
func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var vocabulary sql.NullString

	if err := row.Scan(&doc.ID, &doc.OwnerID, &doc.Filename, &doc.MIMEType, &doc.Size,
		&doc.Content, &doc.Checksum, &vocabulary, &doc.ChunkCount, &doc.UploadedAt, &doc.Active); err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if vocabulary.Valid && vocabulary.String != "" {
		if err := json.Unmarshal([]byte(vocabulary.String), &doc.Vocabulary); err != nil {
			return nil, fmt.Errorf("unmarshalling vocabulary: %w", err)
		}
	}

	return &doc, nil
}

// marshalVocabulary encodes a vocabulary as JSON; nil is stored as NULL.
func marshalVocabulary(vocab []string) (sql.NullString, error) {
	if vocab == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(vocab)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshalling vocabulary: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// requireAffected maps an update that touched no rows to domain.ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// float64SliceToBytes converts a float64 slice to little-endian bytes.
func float64SliceToBytes(floats []float64) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*8)
	for i, f := range floats {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

// bytesToFloat64Slice converts little-endian bytes to a float64 slice.
func bytesToFloat64Slice(data []byte) []float64 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float64, len(data)/8)
	for i := range floats {
		floats[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return floats
}

// utc normalises a timestamp for storage.
func utc(t time.Time) time.Time {
	return t.UTC()
}
