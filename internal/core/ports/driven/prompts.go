package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptClassifyIntent classifies a user message into an intent.
	// The prompt template expects a %s placeholder for the message text.
	PromptClassifyIntent = "classify_intent"

	// PromptQueryRewrite rewrites a question into a search-optimised query.
	// The prompt template expects a %s placeholder for the original query.
	PromptQueryRewrite = "query_rewrite"

	// PromptAnswerSystem is the system prompt for answering over
	// retrieved context. This prompt has no format placeholders.
	PromptAnswerSystem = "answer_system"

	// PromptChitChat is the system prompt for conversational replies
	// with no retrieved context. This prompt has no format placeholders.
	PromptChitChat = "chit_chat"

	// PromptCodeEdit requests a structured single-file edit proposal.
	// The prompt template expects two %s placeholders: the known file
	// list and the retrieved context.
	PromptCodeEdit = "code_edit"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
// Services implementing this interface can have their prompt templates customised
// by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
