package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrChannelUnavailable indicates a search channel has failed and is
	// disabled for the remainder of the conversation.
	ErrChannelUnavailable = errors.New("channel unavailable")

	// ErrModelUnavailable indicates the language model service is not
	// configured or unreachable.
	ErrModelUnavailable = errors.New("model service unavailable")

	// ErrGroundingUnsupported indicates the selected model provider has no
	// web/maps grounding tools.
	ErrGroundingUnsupported = errors.New("grounding not supported by model provider")

	// ErrCloudRequired indicates an operation needs the cloud channel.
	// Code suggestions require it because only the cloud index carries
	// full file contents.
	ErrCloudRequired = errors.New("cloud channel required")

	// ErrNoEditableFiles indicates retrieval found no files on the
	// editable allow-list. A terminal conversational outcome, not a crash.
	ErrNoEditableFiles = errors.New("no editable files found")

	// ErrMalformedProposal indicates the model's structured edit output
	// failed schema validation. Not retried.
	ErrMalformedProposal = errors.New("malformed edit proposal")

	// ErrFileUnresolved indicates a proposed file path matched nothing in
	// the known file set. Not retried.
	ErrFileUnresolved = errors.New("proposed file path does not resolve")

	// ErrSuggestionDecided indicates an accept/reject was attempted on a
	// suggestion that is already terminal.
	ErrSuggestionDecided = errors.New("suggestion already decided")

	// ErrReadOnlyChannel indicates a content update was attempted against
	// a channel that cannot be written.
	ErrReadOnlyChannel = errors.New("channel is read-only")
)
