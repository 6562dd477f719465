package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/docent-labs/docent-cli/internal/adapters/driving/tui/keymap"
	"github.com/docent-labs/docent-cli/internal/adapters/driving/tui/messages"
	"github.com/docent-labs/docent-cli/internal/adapters/driving/tui/styles"
	"github.com/docent-labs/docent-cli/internal/adapters/driving/tui/views/chat"
	"github.com/docent-labs/docent-cli/internal/adapters/driving/tui/views/chats"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the keybindings.
	keymap *keymap.KeyMap

	// chatView is the conversation view.
	chatView *chat.View

	// chatsView is the chat switcher view.
	chatsView *chats.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	chatView := chat.NewView(s, km, ports.Assistant, ports.Chat, ports.Suggestion)
	chatsView := chats.NewView(s, ports.Chat)

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		chatView:    chatView,
		chatsView:   chatsView,
		currentView: messages.ViewChat, // Start in the conversation
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.chatsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("docent - Document Assistant"),
		a.chatView.Init(),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		// Forward to all views for proper sizing
		a.chatView.SetDimensions(msg.Width, msg.Height)
		a.chatsView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewChats {
			return a, a.chatsView.Init()
		}
		return a, nil

	case messages.ChatSelected:
		// A chat was chosen in the switcher: return to the conversation
		a.currentView = messages.ViewChat
		return a, a.chatView.Init()

	case messages.ChatLoaded, messages.StreamDelta, messages.TurnCompleted, messages.SuggestionDecided:
		// Turn lifecycle messages always belong to the conversation view,
		// even while the switcher or help is on screen. Dropping one
		// would stall an in-flight stream.
		a.chatView, cmd = a.chatView.Update(msg)
		a.err = a.chatView.Err()
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		switch a.currentView {
		case messages.ViewChat:
			a.chatView, cmd = a.chatView.Update(msg)
		case messages.ViewChats:
			a.chatsView, cmd = a.chatsView.Update(msg)
		case messages.ViewHelp:
			// Help view doesn't handle error messages
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to active view
	switch a.currentView {
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewChats:
		a.chatsView, cmd = a.chatsView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}

	return a, cmd
}

// handleKeyMsg routes key presses: global bindings first, then the
// active view.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Global quit with ctrl+c
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch msg.String() {
	case "ctrl+h":
		if a.currentView != messages.ViewHelp {
			a.currentView = messages.ViewHelp
			return a, nil
		}
	case "ctrl+l":
		if a.currentView != messages.ViewChats {
			a.currentView = messages.ViewChats
			return a, a.chatsView.Init()
		}
	}

	switch a.currentView {
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
		a.err = a.chatView.Err()
		return a, cmd

	case messages.ViewChats:
		a.chatsView, cmd = a.chatsView.Update(msg)
		return a, cmd

	case messages.ViewHelp:
		// Esc from help goes back to the conversation
		if msg.Type == tea.KeyEsc {
			a.currentView = messages.ViewChat
			return a, nil
		}
		return a, nil
	}
	return a, nil
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewChats:
		return a.chatsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.chatView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Conversation:
  (type)      Compose a message
  enter       Send
  pgup/pgdn   Scroll transcript
  a           Accept pending suggestion
  r           Reject pending suggestion

Chats:
  ctrl+l      Open chat switcher
  j/k, ↑/↓    Navigate chats
  enter       Resume chat
  n           New chat
  d           Delete chat

Global:
  ctrl+h      This help
  esc         Back to conversation
  ctrl+c      Quit

[esc] back to conversation`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// ChatView exposes the conversation view (for testing).
func (a *App) ChatView() *chat.View {
	return a.chatView
}

// ChatsView exposes the switcher view (for testing).
func (a *App) ChatsView() *chats.View {
	return a.chatsView
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.chatView.SetDimensions(width, height)
	a.chatsView.SetDimensions(width, height)
}
