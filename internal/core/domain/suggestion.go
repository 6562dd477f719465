package domain

import "time"

// SuggestionStatus is the lifecycle state of a CodeSuggestion.
type SuggestionStatus string

const (
	// SuggestionPending awaits a user decision.
	SuggestionPending SuggestionStatus = "pending"

	// SuggestionAccepted was applied to the file store.
	SuggestionAccepted SuggestionStatus = "accepted"

	// SuggestionRejected was declined; nothing was mutated.
	SuggestionRejected SuggestionStatus = "rejected"
)

// IsTerminal returns true once the suggestion has been decided.
func (s SuggestionStatus) IsTerminal() bool {
	return s == SuggestionAccepted || s == SuggestionRejected
}

// CodeSuggestion is a proposed single-file edit. Its file reference always
// resolves to a member of the known file set; the workflow fails rather
// than fabricate one. Status transitions exactly once from pending to
// accepted or rejected, then is terminal.
type CodeSuggestion struct {
	// ID is the unique identifier for the suggestion.
	ID string

	// File is the resolved target file.
	File FileRef

	// OriginalContent is the file content the edit was diffed against:
	// the latest accepted content, not necessarily the pristine original.
	OriginalContent string

	// ProposedContent is the full replacement content.
	ProposedContent string

	// Rationale is the model's explanation of the edit.
	Rationale string

	// Status is the lifecycle state.
	Status SuggestionStatus

	// Persisted reports whether an accepted edit was durably written to
	// its backing store. False for read-only sources and failed writes.
	Persisted bool

	// CreatedAt is when the suggestion was proposed.
	CreatedAt time.Time
}

// Accept transitions the suggestion to accepted.
// Returns ErrSuggestionDecided if it is already terminal.
func (s *CodeSuggestion) Accept() error {
	if s.Status.IsTerminal() {
		return ErrSuggestionDecided
	}
	s.Status = SuggestionAccepted
	return nil
}

// Reject transitions the suggestion to rejected.
// Returns ErrSuggestionDecided if it is already terminal.
func (s *CodeSuggestion) Reject() error {
	if s.Status.IsTerminal() {
		return ErrSuggestionDecided
	}
	s.Status = SuggestionRejected
	return nil
}

// EditedFile is the edit history record for one file, keyed by file ID.
// Created on the first accepted suggestion; OriginalContent is written
// once and never overwritten, CurrentContent tracks the latest accepted
// suggestion.
type EditedFile struct {
	// FileID is the channel-scoped file identifier.
	FileID string

	// Path is the file path, kept for display.
	Path string

	// OriginalContent is the first-ever pre-edit content.
	OriginalContent string

	// CurrentContent is the content after the latest accepted suggestion.
	CurrentContent string

	// Durable reports whether CurrentContent was acknowledged by the
	// backing store, as opposed to held only in the local record.
	Durable bool

	// UpdatedAt is when the record was last updated.
	UpdatedAt time.Time
}
