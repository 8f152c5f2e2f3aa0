// Package services holds the document, retrieval, chat, identity and
// settings use cases. They depend only on the driven ports; the tests run
// them against the in-memory stores.
package services
