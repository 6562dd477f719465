// Package domain defines the core business entities for Docent.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chat: A conversation with its messages and channel configuration
//   - Message: A single turn, mutated incrementally while streaming
//   - SearchHit: A candidate document chunk from one search channel
//   - FusedHit: A SearchHit annotated with a fused relevance score
//   - CodeSuggestion: A proposed single-file edit awaiting accept/reject
//   - EditedFile: The edit history record for one file
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
