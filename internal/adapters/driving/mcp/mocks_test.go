package mcp

import (
	"context"

	"github.com/docent-labs/docent-cli/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	hits []domain.FusedHit
	err  error
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	limit int,
) ([]domain.FusedHit, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.hits) {
		return m.hits[:limit], nil
	}
	return m.hits, nil
}

// mockAssistantService is a mock implementation of driving.AssistantService.
type mockAssistantService struct {
	reply     *domain.Message
	err       error
	gotChatID string
	gotText   string
}

func (m *mockAssistantService) Send(
	_ context.Context, chatID, text string, _ func(string),
) (*domain.Message, error) {
	m.gotChatID = chatID
	m.gotText = text
	return m.reply, m.err
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	active *domain.Chat
	chats  []domain.Chat
	err    error
}

func (m *mockChatService) Create(
	_ context.Context, channels []domain.Channel, grounding domain.GroundingOptions,
) (*domain.Chat, error) {
	return &domain.Chat{ID: "chat-new", Channels: channels, Grounding: grounding}, m.err
}

func (m *mockChatService) Get(_ context.Context, id string) (*domain.Chat, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.chats {
		if m.chats[i].ID == id {
			return &m.chats[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockChatService) List(_ context.Context) ([]domain.Chat, error) {
	return m.chats, m.err
}

func (m *mockChatService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockChatService) Active(_ context.Context) (*domain.Chat, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.active, nil
}

func (m *mockChatService) SetActive(_ context.Context, _ string) error {
	return m.err
}

// mockSuggestionService is a mock implementation of driving.SuggestionService.
type mockSuggestionService struct {
	reply      *domain.Message
	suggestion *domain.CodeSuggestion
	err        error
	gotChatID  string
}

func (m *mockSuggestionService) Suggest(_ context.Context, chatID, _ string) (*domain.Message, error) {
	m.gotChatID = chatID
	return m.reply, m.err
}

func (m *mockSuggestionService) Accept(_ context.Context, _, _ string) (*domain.CodeSuggestion, error) {
	return m.suggestion, m.err
}

func (m *mockSuggestionService) Reject(_ context.Context, _, _ string) (*domain.CodeSuggestion, error) {
	return m.suggestion, m.err
}

// mockFileService is a mock implementation of driving.FileService.
type mockFileService struct {
	files   []domain.FileRef
	content string
	edits   []domain.EditedFile
	err     error
}

func (m *mockFileService) List(_ context.Context, _ domain.Channel) ([]domain.FileRef, error) {
	return m.files, m.err
}

func (m *mockFileService) Content(_ context.Context, _ domain.Channel, _ string) (string, error) {
	return m.content, m.err
}

func (m *mockFileService) Edits(_ context.Context) ([]domain.EditedFile, error) {
	return m.edits, m.err
}
