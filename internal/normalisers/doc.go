// Package normalisers provides implementations of the Normaliser interface
// for the upload formats docchat accepts: DOCX, legacy Word (.doc), plain
// text and PDF. Each normaliser knows how to extract text content from a
// specific MIME type.
//
// Normalisers are registered with the Registry at startup.
package normalisers
