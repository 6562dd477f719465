package driven

import (
	"context"

	"github.com/docent-labs/docent-cli/internal/core/domain"
)

// ModelService provides hosted language model operations.
//
// Implementations may include:
//   - Gemini (supports web/maps grounding tools)
//   - OpenAI-compatible APIs (no grounding tools)
type ModelService interface {
	// Classify determines the intent of the latest user text.
	Classify(ctx context.Context, text string) (domain.Intent, error)

	// RewriteQuery transforms user phrasing into a search-optimised query.
	// Callers treat failure as best-effort and keep the original query.
	RewriteQuery(ctx context.Context, query string) (string, error)

	// Generate streams an answer for the conversation. Events carry text
	// deltas in generation order plus any grounding citations as they
	// appear. The returned channel is closed when the stream ends; a
	// mid-stream failure is delivered as a final event with Err set.
	Generate(ctx context.Context, req GenerateRequest) (<-chan StreamEvent, error)

	// ProposeEdit requests a single structured edit proposal. Malformed
	// JSON, a model-side error field, or missing required fields all
	// return an error wrapping domain.ErrMalformedProposal. Never retried.
	ProposeEdit(ctx context.Context, req EditRequest) (EditProposal, error)

	// SupportsGrounding reports whether web/maps tools are available.
	SupportsGrounding() bool

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateRequest configures one streaming generation.
type GenerateRequest struct {
	// History is the conversation so far, oldest first, including the
	// latest user message.
	History []domain.Message

	// Context is the fused retrieval context, possibly empty.
	Context []domain.FusedHit

	// Grounding enables web/maps tools for this generation. Ignored by
	// providers without grounding support.
	Grounding domain.GroundingOptions
}

// StreamEvent is one increment of a generation stream.
type StreamEvent struct {
	// Delta is the next text fragment, possibly empty on citation-only
	// events.
	Delta string

	// Citations are grounding citations attached to this increment.
	Citations []domain.Citation

	// Err terminates the stream when non-nil. Accumulated deltas before
	// it remain valid.
	Err error
}

// EditRequest configures a structured edit proposal.
type EditRequest struct {
	// History is the conversation so far, oldest first.
	History []domain.Message

	// Context is the cloud retrieval context for the request.
	Context []domain.SearchHit

	// Files is the known editable file set, used to ground the proposal
	// on real paths.
	Files []domain.FileRef
}

// EditProposal is the validated structured output of ProposeEdit.
type EditProposal struct {
	// FilePath is the model-proposed target path. Resolution against the
	// known file set happens in the suggestion workflow.
	FilePath string

	// NewContent is the full replacement file content.
	NewContent string

	// Thought is the model's rationale for the edit.
	Thought string
}
