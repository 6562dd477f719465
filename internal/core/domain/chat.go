package domain

import "time"

// MessageRole identifies the author of a message.
type MessageRole string

const (
	// RoleUser is a message written by the user.
	RoleUser MessageRole = "user"

	// RoleModel is a message produced by the language model.
	RoleModel MessageRole = "model"

	// RoleSystem is an internally generated status message.
	RoleSystem MessageRole = "system"
)

// Citation is a grounding reference extracted from a generation stream.
// Citations are deduplicated by URI in arrival order.
type Citation struct {
	// URI is the source location.
	URI string

	// Title is the human-readable source title, if reported.
	Title string
}

// Message is a single turn in a chat. Content is mutated incrementally
// while a generation stream is consumed; all other fields are set once.
type Message struct {
	// ID is the unique identifier for the message.
	ID string

	// ChatID links to the owning Chat.
	ChatID string

	// Role identifies the author.
	Role MessageRole

	// Content is the message text. For model messages this grows as
	// stream deltas arrive.
	Content string

	// Context holds the fused retrieval results this answer was grounded
	// on. Once set from a completed search it is only ever replaced by a
	// later fusion pass for the same message, never dropped.
	Context []FusedHit

	// Citations are grounding citations from web/maps tools, deduplicated
	// by URI.
	Citations []Citation

	// Suggestion is the code-edit proposal attached to this message, if any.
	Suggestion *CodeSuggestion

	// Err annotates a mid-stream failure. The accumulated partial Content
	// is preserved alongside it.
	Err string

	// CreatedAt is when the message was created.
	CreatedAt time.Time
}

// Chat owns an ordered sequence of messages plus the retrieval
// configuration used for every turn.
type Chat struct {
	// ID is the unique identifier for the chat.
	ID string

	// Title is the display title, derived from the first user message.
	Title string

	// Messages is the ordered conversation history.
	Messages []Message

	// Channels is the set of enabled search channels.
	Channels []Channel

	// Grounding configures web/maps grounding tools.
	Grounding GroundingOptions

	// CreatedAt is when the chat was created.
	CreatedAt time.Time

	// UpdatedAt is when the chat was last mutated.
	UpdatedAt time.Time
}

// ChannelEnabled returns true if the chat has the given channel enabled.
func (c *Chat) ChannelEnabled(ch Channel) bool {
	for _, enabled := range c.Channels {
		if enabled == ch {
			return true
		}
	}
	return false
}

// LastMessage returns the most recent message, or nil for an empty chat.
func (c *Chat) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// RetrievalActive returns true if any search channel or grounding tool
// is enabled. Used to pick the fallback intent when classification fails.
func (c *Chat) RetrievalActive() bool {
	return len(c.Channels) > 0 || c.Grounding.Any()
}
