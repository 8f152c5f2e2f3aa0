package driven

// PromptStore serves named prompt templates, usually from user-editable
// files. Load falls back to the built-in template for known names.
type PromptStore interface {
	Load(name string) (string, error)

	// Reload forgets cached templates.
	Reload()
}

// PromptRAGContext wraps a question with retrieved passages. The template
// takes two %s verbs: the passages, then the question.
const PromptRAGContext = "rag_context"

// DefaultRAGContextPrompt is the built-in PromptRAGContext template.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const DefaultRAGContextPrompt = `You have access to relevant content from the user's document. Use this context to answer the question accurately.

DOCUMENT CONTEXT:
%s

USER QUESTION: %s

Please provide a comprehensive answer based on the document context. If the answer cannot be found in the provided context, please mention that.`
