// Package driven declares what the core needs from the outside world:
// storage, text extraction, the indexing pipeline, configuration and the
// language model.
//
// Stores, the normaliser registry, the pipeline builder and the config
// store must be supplied. LLMService and PromptStore may be nil. Without
// an LLM, chat sends fail with domain.ErrLLMUnavailable while uploads and
// retrieval keep working; without a prompt store the built-in template
// is used.
//
// This package imports domain and nothing else from the module.
package driven
