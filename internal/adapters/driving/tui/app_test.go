package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docent-labs/docent-cli/internal/adapters/driving/tui/messages"
	"github.com/docent-labs/docent-cli/internal/core/domain"
)

func newTestPorts() *Ports {
	return &Ports{
		Assistant:  &MockAssistantService{},
		Chat:       &MockChatService{},
		Suggestion: &MockSuggestionService{},
		File:       &MockFileService{},
	}
}

func TestNewApp_Success(t *testing.T) {
	ports := newTestPorts()

	app, err := NewApp(ports)

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewChat, app.CurrentView())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	ports := &Ports{
		Assistant: nil,
		Chat:      &MockChatService{},
	}

	app, err := NewApp(ports)

	assert.Error(t, err)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")
	result := app.WithContext(ctx)

	assert.Equal(t, app, result)
}

func TestApp_Init(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	cmd := app.Init()

	// Init returns a batch command
	assert.NotNil(t, cmd)
}

func TestApp_Update_WindowSize(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	msg := tea.WindowSizeMsg{Width: 80, Height: 24}
	model, cmd := app.Update(msg)

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
}

func TestApp_Update_KeyMsg_CtrlC(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	msg := tea.KeyMsg{Type: tea.KeyCtrlC}
	model, cmd := app.Update(msg)

	assert.Equal(t, app, model)
	assert.NotNil(t, cmd)
}

func TestApp_Update_KeyMsg_OpenSwitcher(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)

	msg := tea.KeyMsg{Type: tea.KeyCtrlL}
	_, cmd := app.Update(msg)

	assert.Equal(t, messages.ViewChats, app.CurrentView())
	// Switcher Init loads the chat list
	assert.NotNil(t, cmd)
}

func TestApp_Update_KeyMsg_OpenHelp(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)

	msg := tea.KeyMsg{Type: tea.KeyCtrlH}
	app.Update(msg)

	assert.Equal(t, messages.ViewHelp, app.CurrentView())
}

func TestApp_Update_KeyMsg_EscapeFromHelp(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(messages.ViewChanged{View: messages.ViewHelp})
	assert.Equal(t, messages.ViewHelp, app.CurrentView())

	msg := tea.KeyMsg{Type: tea.KeyEsc}
	app.Update(msg)

	assert.Equal(t, messages.ViewChat, app.CurrentView())
}

func TestApp_Update_ViewChanged(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	msg := messages.ViewChanged{View: messages.ViewHelp}
	model, cmd := app.Update(msg)

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.Equal(t, messages.ViewHelp, app.CurrentView())
}

func TestApp_Update_ViewChanged_ToChats(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)

	msg := messages.ViewChanged{View: messages.ViewChats}
	model, cmd := app.Update(msg)

	assert.Equal(t, app, model)
	assert.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChats, app.CurrentView())
}

func TestApp_Update_ChatSelected_ReturnsToConversation(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(messages.ViewChanged{View: messages.ViewChats})

	msg := messages.ChatSelected{ChatID: "chat-2"}
	_, cmd := app.Update(msg)

	assert.Equal(t, messages.ViewChat, app.CurrentView())
	// The conversation view reloads the active chat
	assert.NotNil(t, cmd)
}

func TestApp_Update_ChatLoaded_ReachesConversationFromAnyView(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(messages.ViewChanged{View: messages.ViewChats})

	chat := &domain.Chat{ID: "chat-1", Title: "Notes"}
	app.Update(messages.ChatLoaded{Chat: chat})

	require.NotNil(t, app.ChatView().Chat())
	assert.Equal(t, "chat-1", app.ChatView().Chat().ID)
}

func TestApp_Update_TurnCompleted_ReachesConversationFromHelp(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(messages.ChatLoaded{Chat: &domain.Chat{ID: "chat-1"}})
	app.Update(messages.ViewChanged{View: messages.ViewHelp})

	reply := &domain.Message{ID: "m1", ChatID: "chat-1", Role: domain.RoleModel, Content: "hi"}
	app.Update(messages.TurnCompleted{ChatID: "chat-1", Reply: reply})

	assert.False(t, app.ChatView().Busy())
}

func TestApp_Update_ErrorOccurred(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	err := errors.New("something went wrong")
	msg := messages.ErrorOccurred{Err: err}
	model, _ := app.Update(msg)

	assert.Equal(t, app, model)
	assert.Error(t, app.Err())
}

func TestApp_Update_Quit(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	msg := messages.Quit{}
	_, cmd := app.Update(msg)

	assert.NotNil(t, cmd)
}

func TestApp_View_NotReady(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	view := app.View()

	assert.Contains(t, view, "Initialising")
}

func TestApp_View_ChatView(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(messages.ChatLoaded{Chat: &domain.Chat{ID: "chat-1", Title: "Notes"}})

	view := app.View()

	assert.Contains(t, view, "Notes")
}

func TestApp_View_HelpView(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(messages.ViewChanged{View: messages.ViewHelp})

	view := app.View()

	assert.Contains(t, view, "Help")
	assert.Contains(t, view, "Accept pending suggestion")
}

func TestApp_View_ChatsView(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(messages.ViewChanged{View: messages.ViewChats})

	view := app.View()

	assert.Contains(t, view, "Chats")
}

func TestApp_View_DefaultView(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.currentView = messages.ViewType(999)

	view := app.View()

	// Falls back to the conversation view
	assert.NotEmpty(t, view)
}

func TestApp_SetDimensions(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	assert.False(t, app.Ready())

	app.SetDimensions(100, 50)

	assert.True(t, app.Ready())
}
