// Package chats provides the chat switcher view component for the TUI.
package chats

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/docent-labs/docent-cli/internal/adapters/driving/tui/messages"
	"github.com/docent-labs/docent-cli/internal/adapters/driving/tui/styles"
	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driving"
)

// View is the chat switcher: a list of chats to resume, create or delete.
type View struct {
	styles      *styles.Styles
	chatService driving.ChatService

	ctx           context.Context
	chats         []domain.Chat
	selectedIndex int
	loading       bool
	err           error
	width         int
	height        int
}

// NewView creates a new chat switcher view.
func NewView(s *styles.Styles, chatService driving.ChatService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:      s,
		chatService: chatService,
		ctx:         context.Background(),
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view and loads the chat list.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadChats()
}

// loadChats returns a command that loads all chats.
func (v *View) loadChats() tea.Cmd {
	return func() tea.Msg {
		chats, err := v.chatService.List(v.ctx)
		return messages.ChatsLoaded{Chats: chats, Err: err}
	}
}

// Update handles messages for the chat switcher.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ChatsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.chats = msg.Chats
			v.err = nil
			if v.selectedIndex >= len(v.chats) {
				v.selectedIndex = 0
			}
		}
		return v, nil

	case messages.ChatCreated:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		// Jump straight into the new chat
		return v, func() tea.Msg {
			return messages.ChatSelected{ChatID: msg.Chat.ID}
		}

	case messages.ChatDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.loadChats()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selectedIndex > 0 {
			v.selectedIndex--
		}
	case "down", "j":
		if v.selectedIndex < len(v.chats)-1 {
			v.selectedIndex++
		}
	case "enter":
		if v.selectedIndex < len(v.chats) {
			chatID := v.chats[v.selectedIndex].ID
			return v, v.selectChat(chatID)
		}
	case "n", "ctrl+n":
		return v, v.createChat()
	case "d":
		if v.selectedIndex < len(v.chats) {
			chatID := v.chats[v.selectedIndex].ID
			return v, v.deleteChat(chatID)
		}
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewChat}
		}
	}

	return v, nil
}

// selectChat makes a chat active and returns to the conversation view.
func (v *View) selectChat(chatID string) tea.Cmd {
	return func() tea.Msg {
		if err := v.chatService.SetActive(v.ctx, chatID); err != nil {
			return messages.ErrorOccurred{Err: err}
		}
		return messages.ChatSelected{ChatID: chatID}
	}
}

// createChat creates a chat with the standard channel pair.
func (v *View) createChat() tea.Cmd {
	return func() tea.Msg {
		channels := []domain.Channel{domain.ChannelCloud, domain.ChannelLocal}
		chat, err := v.chatService.Create(v.ctx, channels, domain.GroundingOptions{})
		return messages.ChatCreated{Chat: chat, Err: err}
	}
}

// deleteChat removes a chat and reloads the list.
func (v *View) deleteChat(chatID string) tea.Cmd {
	return func() tea.Msg {
		err := v.chatService.Delete(v.ctx, chatID)
		return messages.ChatDeleted{ChatID: chatID, Err: err}
	}
}

// View renders the chat switcher.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Chats"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", minInt(v.width-4, 60)))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading chats..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case len(v.chats) == 0:
		b.WriteString(v.styles.Muted.Render("No chats yet. Press 'n' to start one."))
	default:
		for i, chat := range v.chats {
			b.WriteString(v.renderChat(i, &chat))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] resume  [n] new  [d] delete  [esc] back"))

	return b.String()
}

// renderChat renders one row of the chat list.
func (v *View) renderChat(index int, chat *domain.Chat) string {
	title := chat.Title
	if title == "" {
		title = "(untitled)"
	}

	channels := make([]string, 0, len(chat.Channels))
	for _, ch := range chat.Channels {
		channels = append(channels, ch.String())
	}
	meta := fmt.Sprintf("%d messages · %s · %s",
		len(chat.Messages),
		strings.Join(channels, ","),
		chat.UpdatedAt.Format("2006-01-02 15:04"),
	)

	line := fmt.Sprintf("%s  %s", title, v.styles.Muted.Render(meta))
	if index == v.selectedIndex {
		return v.styles.Selected.Render("> " + line)
	}
	return v.styles.Normal.Render("  " + line)
}

// Chats returns the loaded chats.
func (v *View) Chats() []domain.Chat {
	return v.chats
}

// SelectedIndex returns the cursor position.
func (v *View) SelectedIndex() int {
	return v.selectedIndex
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
