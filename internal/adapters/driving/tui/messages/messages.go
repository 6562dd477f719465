// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/docent-labs/docent-cli/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the conversation view.
	ViewChat ViewType = iota
	// ViewChats is the chat switcher.
	ViewChats
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewChats:
		return "chats"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ChatLoaded carries the active chat into the conversation view.
type ChatLoaded struct {
	Chat *domain.Chat
	Err  error
}

// StreamDelta carries one text fragment of an in-flight answer.
type StreamDelta struct {
	ChatID string
	Delta  string
}

// TurnCompleted signals that a conversational turn finished. The reply
// carries any retrieval context, citations and attached suggestion; a
// non-nil Err means the turn could not run at all.
type TurnCompleted struct {
	ChatID string
	Reply  *domain.Message
	Err    error
}

// SuggestionDecided signals the outcome of an accept/reject.
type SuggestionDecided struct {
	Suggestion *domain.CodeSuggestion
	Accepted   bool
	Err        error
}

// ChatsLoaded carries the chat list for the switcher.
type ChatsLoaded struct {
	Chats []domain.Chat
	Err   error
}

// ChatSelected signals a chat was chosen in the switcher.
type ChatSelected struct {
	ChatID string
}

// ChatCreated signals a new chat was created and made active.
type ChatCreated struct {
	Chat *domain.Chat
	Err  error
}

// ChatDeleted signals a chat was removed.
type ChatDeleted struct {
	ChatID string
	Err    error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
