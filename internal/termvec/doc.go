// Package termvec builds lexical term-frequency vectors.
//
// A document's vocabulary is its most frequent terms. Each chunk, and each
// query, becomes a vector over that vocabulary whose components are the
// relative frequency of the term in the text. Vectors are compared with
// cosine similarity.
//
// These are not semantic embeddings: two texts only score above zero when
// they share vocabulary terms.
//
// All functions are pure and safe for concurrent use.
package termvec
