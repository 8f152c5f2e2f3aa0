// Package sqlite stores documents, chunks, chats and users in one SQLite
// file using the pure Go modernc.org/sqlite driver.
//
// Store hands out the driven.DocumentStore, driven.ChatStore and
// driven.UserStore views over a single connection pool. The database runs
// in WAL mode with foreign keys on, so deleting a document removes its
// chunks. Chunk embeddings are little-endian float64 blobs and the
// document vocabulary is a JSON array.
//
// The schema is created by the embedded scripts in migrations/. The
// default location is ~/.docchat/data/docchat.db.
package sqlite
