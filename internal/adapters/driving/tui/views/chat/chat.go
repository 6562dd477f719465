// Package chat provides the conversation view component for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/docent-labs/docent-cli/internal/adapters/driving/tui/components/input"
	"github.com/docent-labs/docent-cli/internal/adapters/driving/tui/components/status"
	"github.com/docent-labs/docent-cli/internal/adapters/driving/tui/components/transcript"
	"github.com/docent-labs/docent-cli/internal/adapters/driving/tui/keymap"
	"github.com/docent-labs/docent-cli/internal/adapters/driving/tui/messages"
	"github.com/docent-labs/docent-cli/internal/adapters/driving/tui/styles"
	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driving"
)

// View is the conversation view. It owns the transcript, the message
// input and the status bar, and drives assistant turns.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	assistantService  driving.AssistantService
	chatService       driving.ChatService
	suggestionService driving.SuggestionService

	ctx  context.Context
	chat *domain.Chat

	input      *input.MessageInput
	transcript *transcript.Transcript
	status     *status.Bar

	// stream carries deltas and the final turn result from the send
	// goroutine back into the Bubbletea update loop.
	stream chan tea.Msg

	busy             bool
	pendingMessageID string
	err              error
	width            int
	height           int
}

// NewView creates a new conversation view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	assistantService driving.AssistantService,
	chatService driving.ChatService,
	suggestionService driving.SuggestionService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:            s,
		keymap:            km,
		assistantService:  assistantService,
		chatService:       chatService,
		suggestionService: suggestionService,
		ctx:               context.Background(),
		input:             input.NewMessageInput(s),
		transcript:        transcript.New(s),
		status:            status.NewBar(s, km),
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view and loads the active chat.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.loadActiveChat())
}

// loadActiveChat returns a command that resolves the active chat.
func (v *View) loadActiveChat() tea.Cmd {
	return func() tea.Msg {
		chat, err := v.chatService.Active(v.ctx)
		return messages.ChatLoaded{Chat: chat, Err: err}
	}
}

// loadChat returns a command that reloads a specific chat.
func (v *View) loadChat(chatID string) tea.Cmd {
	return func() tea.Msg {
		chat, err := v.chatService.Get(v.ctx, chatID)
		return messages.ChatLoaded{Chat: chat, Err: err}
	}
}

// Update handles messages for the conversation view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ChatLoaded:
		return v.handleChatLoaded(msg)

	case messages.StreamDelta:
		if v.chat == nil || msg.ChatID != v.chat.ID {
			return v, v.waitForStream()
		}
		v.transcript.AppendDelta(msg.Delta)
		v.status.SetState(status.StateStreaming)
		return v, v.waitForStream()

	case messages.TurnCompleted:
		return v.handleTurnCompleted(msg)

	case messages.SuggestionDecided:
		return v.handleSuggestionDecided(msg)

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.status.SetState(status.StateError)
		v.status.SetMessage(msg.Err.Error())
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return v, v.sendMessage()
	case "pgup":
		v.transcript.ScrollUp()
		return v, nil
	case "pgdown":
		v.transcript.ScrollDown()
		return v, nil
	case "a":
		if v.suggestionPending() && v.input.Value() == "" {
			return v, v.decideSuggestion(true)
		}
	case "r":
		if v.suggestionPending() && v.input.Value() == "" {
			return v, v.decideSuggestion(false)
		}
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleChatLoaded installs a freshly loaded chat.
func (v *View) handleChatLoaded(msg messages.ChatLoaded) (*View, tea.Cmd) {
	if msg.Err != nil {
		v.err = msg.Err
		v.status.SetState(status.StateError)
		v.status.SetMessage(msg.Err.Error())
		return v, nil
	}

	v.chat = msg.Chat
	v.err = nil
	v.transcript.SetMessages(msg.Chat.Messages)
	v.status.SetChatName(chatDisplayTitle(msg.Chat))
	v.refreshPendingSuggestion()
	return v, nil
}

// handleTurnCompleted finalises a turn: the send goroutine has
// returned and the stream channel is drained.
func (v *View) handleTurnCompleted(msg messages.TurnCompleted) (*View, tea.Cmd) {
	v.busy = false
	v.stream = nil

	if msg.Err != nil {
		v.err = msg.Err
		v.status.SetState(status.StateError)
		v.status.SetMessage(msg.Err.Error())
		return v, nil
	}

	if msg.Reply != nil {
		v.transcript.SetMessages(appendReply(v.transcript.Messages(), *msg.Reply))
		if msg.Reply.Suggestion != nil && msg.Reply.Suggestion.Status == domain.SuggestionPending {
			v.pendingMessageID = msg.Reply.ID
			v.status.SetState(status.StateSuggestion)
			return v, nil
		}
	}

	v.pendingMessageID = ""
	v.status.SetState(status.StateReady)
	return v, nil
}

// handleSuggestionDecided reports an accept/reject outcome and
// reloads the chat so the transcript shows the final status.
func (v *View) handleSuggestionDecided(msg messages.SuggestionDecided) (*View, tea.Cmd) {
	if msg.Err != nil {
		v.err = msg.Err
		v.status.SetState(status.StateError)
		v.status.SetMessage(msg.Err.Error())
		return v, nil
	}

	v.pendingMessageID = ""
	v.status.SetState(status.StateReady)
	if msg.Accepted {
		name := msg.Suggestion.File.Path
		if name == "" {
			name = msg.Suggestion.File.Name
		}
		if msg.Suggestion.Persisted {
			v.status.SetMessage("Applied suggestion to " + name)
		} else {
			v.status.SetMessage("Recorded suggestion for " + name + " (source is read-only)")
		}
	} else {
		v.status.SetMessage("Suggestion rejected")
	}

	if v.chat != nil {
		return v, v.loadChat(v.chat.ID)
	}
	return v, nil
}

// sendMessage starts an assistant turn for the typed text. The turn
// runs in its own goroutine; deltas and the final result arrive as
// Bubbletea messages through the stream channel.
func (v *View) sendMessage() tea.Cmd {
	text := strings.TrimSpace(v.input.Value())
	if text == "" || v.busy || v.chat == nil {
		return nil
	}

	v.input.Reset()
	v.busy = true
	v.err = nil
	v.status.SetState(status.StateThinking)
	v.transcript.Append(domain.Message{
		ChatID:    v.chat.ID,
		Role:      domain.RoleUser,
		Content:   text,
		CreatedAt: time.Now(),
	})

	chatID := v.chat.ID
	stream := make(chan tea.Msg, 16)
	v.stream = stream

	go func() {
		reply, err := v.assistantService.Send(v.ctx, chatID, text, func(delta string) {
			stream <- messages.StreamDelta{ChatID: chatID, Delta: delta}
		})
		stream <- messages.TurnCompleted{ChatID: chatID, Reply: reply, Err: err}
		close(stream)
	}()

	return v.waitForStream()
}

// waitForStream returns a command that delivers the next stream
// message. The delta handler re-issues it until TurnCompleted arrives.
func (v *View) waitForStream() tea.Cmd {
	stream := v.stream
	if stream == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-stream
		if !ok {
			return nil
		}
		return msg
	}
}

// decideSuggestion accepts or rejects the pending suggestion.
func (v *View) decideSuggestion(accept bool) tea.Cmd {
	if v.suggestionService == nil {
		return func() tea.Msg {
			return messages.ErrorOccurred{Err: fmt.Errorf("suggestion service not available")}
		}
	}

	chatID := v.chat.ID
	messageID := v.pendingMessageID
	return func() tea.Msg {
		var (
			suggestion *domain.CodeSuggestion
			err        error
		)
		if accept {
			suggestion, err = v.suggestionService.Accept(v.ctx, chatID, messageID)
		} else {
			suggestion, err = v.suggestionService.Reject(v.ctx, chatID, messageID)
		}
		return messages.SuggestionDecided{Suggestion: suggestion, Accepted: accept, Err: err}
	}
}

// suggestionPending reports whether a suggestion awaits a decision.
func (v *View) suggestionPending() bool {
	return v.pendingMessageID != "" && v.chat != nil
}

// refreshPendingSuggestion rescans the chat for an undecided suggestion.
func (v *View) refreshPendingSuggestion() {
	v.pendingMessageID = ""
	if v.chat == nil {
		return
	}
	for i := len(v.chat.Messages) - 1; i >= 0; i-- {
		msg := &v.chat.Messages[i]
		if msg.Suggestion != nil && msg.Suggestion.Status == domain.SuggestionPending {
			v.pendingMessageID = msg.ID
			v.status.SetState(status.StateSuggestion)
			return
		}
	}
}

// View renders the conversation view.
func (v *View) View() string {
	var b strings.Builder

	title := "docent"
	if v.chat != nil {
		title = chatDisplayTitle(v.chat)
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", minInt(v.width-4, 60)))
	b.WriteString("\n\n")

	b.WriteString(v.transcript.View())
	b.WriteString("\n")
	b.WriteString(v.input.View())
	b.WriteString("\n")
	b.WriteString(v.status.View())

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
	v.status.SetWidth(width)
	// Title, separator, input and status bar take the rest
	transcriptHeight := height - 7
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}
	v.transcript.SetDimensions(width, transcriptHeight)
}

// Chat returns the currently loaded chat.
func (v *View) Chat() *domain.Chat {
	return v.chat
}

// Busy returns whether a turn is in flight.
func (v *View) Busy() bool {
	return v.busy
}

// PendingMessageID returns the message holding an undecided suggestion.
func (v *View) PendingMessageID() string {
	return v.pendingMessageID
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Transcript exposes the transcript component (for testing).
func (v *View) Transcript() *transcript.Transcript {
	return v.transcript
}

// Input exposes the input component (for testing).
func (v *View) Input() *input.MessageInput {
	return v.input
}

// appendReply replaces any locally echoed copy of the reply before
// appending, so reloads and completions do not duplicate messages.
func appendReply(msgs []domain.Message, reply domain.Message) []domain.Message {
	for i := range msgs {
		if msgs[i].ID != "" && msgs[i].ID == reply.ID {
			msgs[i] = reply
			return msgs
		}
	}
	return append(msgs, reply)
}

// chatDisplayTitle returns the chat title, falling back to its ID.
func chatDisplayTitle(chat *domain.Chat) string {
	if chat.Title != "" {
		return chat.Title
	}
	if len(chat.ID) > 8 {
		return "chat " + chat.ID[:8]
	}
	return "chat " + chat.ID
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
