package cli

import (
	"context"
	"errors"
	"time"

	"github.com/docent-labs/docent-cli/internal/core/domain"
)

// mockAssistant replays a prepared reply, emitting its content as a
// single delta.
type mockAssistant struct {
	reply   *domain.Message
	err     error
	gotText string
}

func (m *mockAssistant) Send(
	_ context.Context, chatID, text string, onDelta func(string),
) (*domain.Message, error) {
	m.gotText = text
	if m.err != nil {
		return nil, m.err
	}
	reply := m.reply
	if reply == nil {
		reply = &domain.Message{
			ID:      "msg-1",
			ChatID:  chatID,
			Role:    domain.RoleModel,
			Content: "mock answer",
		}
	}
	if onDelta != nil && reply.Content != "" {
		onDelta(reply.Content)
	}
	return reply, nil
}

// mockChatService serves a fixed chat list with an active chat.
type mockChatService struct {
	active  *domain.Chat
	chats   []domain.Chat
	usedID  string
	deleted string
	err     error
}

func (m *mockChatService) Create(
	_ context.Context, channels []domain.Channel, grounding domain.GroundingOptions,
) (*domain.Chat, error) {
	if m.err != nil {
		return nil, m.err
	}
	chat := &domain.Chat{
		ID:        "chat-new",
		Channels:  channels,
		Grounding: grounding,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.active = chat
	return chat, nil
}

func (m *mockChatService) Get(_ context.Context, id string) (*domain.Chat, error) {
	for i := range m.chats {
		if m.chats[i].ID == id {
			return &m.chats[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockChatService) List(_ context.Context) ([]domain.Chat, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.chats, nil
}

func (m *mockChatService) Delete(_ context.Context, id string) error {
	m.deleted = id
	return m.err
}

func (m *mockChatService) Active(_ context.Context) (*domain.Chat, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.active == nil {
		m.active = &domain.Chat{ID: "chat-active", Channels: []domain.Channel{domain.ChannelCloud}}
	}
	return m.active, nil
}

func (m *mockChatService) SetActive(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.usedID = id
	return nil
}

// mockSearchService returns a fixed hit list.
type mockSearchService struct {
	hits []domain.FusedHit
	err  error
}

func (m *mockSearchService) Search(_ context.Context, _ string, limit int) ([]domain.FusedHit, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.hits) {
		return m.hits[:limit], nil
	}
	return m.hits, nil
}

// mockSuggestionService replays prepared workflow outcomes.
type mockSuggestionService struct {
	reply      *domain.Message
	suggestion *domain.CodeSuggestion
	err        error
	acceptedID string
	rejectedID string
}

func (m *mockSuggestionService) Suggest(_ context.Context, chatID, _ string) (*domain.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.reply != nil {
		return m.reply, nil
	}
	return &domain.Message{ID: "msg-s", ChatID: chatID, Role: domain.RoleModel}, nil
}

func (m *mockSuggestionService) Accept(_ context.Context, _, messageID string) (*domain.CodeSuggestion, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.acceptedID = messageID
	return m.suggestion, nil
}

func (m *mockSuggestionService) Reject(_ context.Context, _, messageID string) (*domain.CodeSuggestion, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.rejectedID = messageID
	return m.suggestion, nil
}

// mockFileService serves fixed file listings and contents.
type mockFileService struct {
	files   []domain.FileRef
	content string
	edits   []domain.EditedFile
	err     error
}

func (m *mockFileService) List(_ context.Context, _ domain.Channel) ([]domain.FileRef, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.files, nil
}

func (m *mockFileService) Content(_ context.Context, _ domain.Channel, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.content, nil
}

func (m *mockFileService) Edits(_ context.Context) ([]domain.EditedFile, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.edits, nil
}

// mockConfigStore is a map-backed config store.
type mockConfigStore struct {
	values map[string]any
	path   string
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any), path: "/tmp/docent-test/config.toml"}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if v, ok := m.values[key].(string); ok {
		return v
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	if v, ok := m.values[key].(int); ok {
		return v
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	if v, ok := m.values[key].(bool); ok {
		return v
	}
	return false
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	if v, ok := m.values[key].([]string); ok {
		return v
	}
	return nil
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return nil }
func (m *mockConfigStore) Load() error { return nil }
func (m *mockConfigStore) Path() string {
	return m.path
}

var errMockFailure = errors.New("mock failure")

// setupTestServices wires mock services into the package vars and
// returns a cleanup that restores the previous wiring.
func setupTestServices() func() {
	oldAssistant := assistantService
	oldChat := chatService
	oldSearch := searchService
	oldSuggestion := suggestionService
	oldFile := fileService
	oldConfig := configStore

	assistantService = &mockAssistant{}
	chatService = &mockChatService{}
	searchService = &mockSearchService{
		hits: []domain.FusedHit{
			{
				SearchHit: domain.SearchHit{
					ChunkID: "chunk-1", FileID: "f1", FileName: "guide.md",
					Path: "docs/guide.md", Snippet: "a matching snippet",
					Channel: domain.ChannelCloud,
				},
				FusedScore: 0.0164,
			},
		},
	}
	suggestionService = &mockSuggestionService{}
	fileService = &mockFileService{}
	configStore = newMockConfigStore()

	return func() {
		assistantService = oldAssistant
		chatService = oldChat
		searchService = oldSearch
		suggestionService = oldSuggestion
		fileService = oldFile
		configStore = oldConfig
	}
}
