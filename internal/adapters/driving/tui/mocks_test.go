package tui

import (
	"context"

	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driving"
)

// MockAssistantService is a mock implementation of driving.AssistantService.
type MockAssistantService struct {
	SendFunc func(ctx context.Context, chatID, text string, onDelta func(string)) (*domain.Message, error)
}

var _ driving.AssistantService = (*MockAssistantService)(nil)

func (m *MockAssistantService) Send(
	ctx context.Context, chatID, text string, onDelta func(string),
) (*domain.Message, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, chatID, text, onDelta)
	}
	return &domain.Message{
		ID:      "reply-1",
		ChatID:  chatID,
		Role:    domain.RoleModel,
		Content: "mock reply",
	}, nil
}

// MockChatService is a mock implementation of driving.ChatService.
type MockChatService struct {
	CreateFunc    func(ctx context.Context, channels []domain.Channel, grounding domain.GroundingOptions) (*domain.Chat, error)
	GetFunc       func(ctx context.Context, id string) (*domain.Chat, error)
	ListFunc      func(ctx context.Context) ([]domain.Chat, error)
	DeleteFunc    func(ctx context.Context, id string) error
	ActiveFunc    func(ctx context.Context) (*domain.Chat, error)
	SetActiveFunc func(ctx context.Context, id string) error
}

var _ driving.ChatService = (*MockChatService)(nil)

func (m *MockChatService) Create(
	ctx context.Context, channels []domain.Channel, grounding domain.GroundingOptions,
) (*domain.Chat, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, channels, grounding)
	}
	return &domain.Chat{ID: "chat-new", Channels: channels, Grounding: grounding}, nil
}

func (m *MockChatService) Get(ctx context.Context, id string) (*domain.Chat, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return &domain.Chat{ID: id}, nil
}

func (m *MockChatService) List(ctx context.Context) ([]domain.Chat, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockChatService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockChatService) Active(ctx context.Context) (*domain.Chat, error) {
	if m.ActiveFunc != nil {
		return m.ActiveFunc(ctx)
	}
	return &domain.Chat{ID: "chat-active", Title: "Active chat"}, nil
}

func (m *MockChatService) SetActive(ctx context.Context, id string) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id)
	}
	return nil
}

// MockSuggestionService is a mock implementation of driving.SuggestionService.
type MockSuggestionService struct {
	SuggestFunc func(ctx context.Context, chatID, query string) (*domain.Message, error)
	AcceptFunc  func(ctx context.Context, chatID, messageID string) (*domain.CodeSuggestion, error)
	RejectFunc  func(ctx context.Context, chatID, messageID string) (*domain.CodeSuggestion, error)
}

var _ driving.SuggestionService = (*MockSuggestionService)(nil)

func (m *MockSuggestionService) Suggest(
	ctx context.Context, chatID, query string,
) (*domain.Message, error) {
	if m.SuggestFunc != nil {
		return m.SuggestFunc(ctx, chatID, query)
	}
	return &domain.Message{ID: "reply-1", ChatID: chatID, Role: domain.RoleModel}, nil
}

func (m *MockSuggestionService) Accept(
	ctx context.Context, chatID, messageID string,
) (*domain.CodeSuggestion, error) {
	if m.AcceptFunc != nil {
		return m.AcceptFunc(ctx, chatID, messageID)
	}
	return &domain.CodeSuggestion{Status: domain.SuggestionAccepted, Persisted: true}, nil
}

func (m *MockSuggestionService) Reject(
	ctx context.Context, chatID, messageID string,
) (*domain.CodeSuggestion, error) {
	if m.RejectFunc != nil {
		return m.RejectFunc(ctx, chatID, messageID)
	}
	return &domain.CodeSuggestion{Status: domain.SuggestionRejected}, nil
}

// MockFileService is a mock implementation of driving.FileService.
type MockFileService struct {
	ListFunc    func(ctx context.Context, ch domain.Channel) ([]domain.FileRef, error)
	ContentFunc func(ctx context.Context, ch domain.Channel, idOrPath string) (string, error)
	EditsFunc   func(ctx context.Context) ([]domain.EditedFile, error)
}

var _ driving.FileService = (*MockFileService)(nil)

func (m *MockFileService) List(ctx context.Context, ch domain.Channel) ([]domain.FileRef, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ch)
	}
	return nil, nil
}

func (m *MockFileService) Content(
	ctx context.Context, ch domain.Channel, idOrPath string,
) (string, error) {
	if m.ContentFunc != nil {
		return m.ContentFunc(ctx, ch, idOrPath)
	}
	return "", nil
}

func (m *MockFileService) Edits(ctx context.Context) ([]domain.EditedFile, error) {
	if m.EditsFunc != nil {
		return m.EditsFunc(ctx)
	}
	return nil, nil
}
