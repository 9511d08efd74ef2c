package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
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
	// PromptChatSystem is the system prompt for answering questions.
	// This prompt has no format placeholders.
	PromptChatSystem = "chat_system"

	// PromptAnswer wraps retrieved context and the question.
	// The template expects %s (context) and %s (question) placeholders.
	PromptAnswer = "answer"

	// PromptClarify rewrites a follow-up question into a standalone one.
	// The template expects %s (previous question), %s (last answer)
	// and %s (new question) placeholders.
	PromptClarify = "clarify"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
// Services implementing this interface can have their prompt templates customised
// by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
