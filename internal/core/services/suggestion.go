package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
	"github.com/docent-labs/docent-cli/internal/core/ports/driving"
	"github.com/docent-labs/docent-cli/internal/logger"
)

// Ensure SuggestionService implements the interface.
var _ driving.SuggestionService = (*SuggestionService)(nil)

// SuggestionService runs the code-suggestion workflow: cloud-only
// retrieval, structured edit proposal, and the accept/reject lifecycle
// over the file-content store and edit history.
type SuggestionService struct {
	retrieval *RetrievalService
	model     driven.ModelService
	files     map[domain.Channel]driven.FileStore
	edits     driven.EditStore
	chats     driven.ChatStore
}

// NewSuggestionService creates a new suggestion service.
func NewSuggestionService(
	retrieval *RetrievalService,
	model driven.ModelService,
	files map[domain.Channel]driven.FileStore,
	edits driven.EditStore,
	chats driven.ChatStore,
) *SuggestionService {
	return &SuggestionService{
		retrieval: retrieval,
		model:     model,
		files:     files,
		edits:     edits,
		chats:     chats,
	}
}

// Suggest runs the workflow for the query and appends the outcome to the
// chat as a model message. Terminal outcomes (no editable files,
// malformed proposal, unresolvable path) produce a descriptive message
// with no suggestion attached; they are conversational results, not
// errors. A non-nil error means the turn itself could not run.
func (s *SuggestionService) Suggest(ctx context.Context, chatID, query string) (*domain.Message, error) {
	chat, err := s.chats.GetChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("load chat: %w", err)
	}

	appendMessage(chat, domain.Message{
		ID:        uuid.NewString(),
		ChatID:    chat.ID,
		Role:      domain.RoleUser,
		Content:   query,
		CreatedAt: time.Now(),
	})

	reply := domain.Message{
		ID:        uuid.NewString(),
		ChatID:    chat.ID,
		Role:      domain.RoleModel,
		CreatedAt: time.Now(),
	}

	suggestion, proposeErr := s.propose(ctx, chat, query)
	if proposeErr != nil {
		logger.Warn("Suggestion workflow: %v", proposeErr)
		reply.Content = outcomeText(proposeErr)
		reply.Err = proposeErr.Error()
	} else {
		reply.Content = suggestion.Rationale
		reply.Suggestion = suggestion
	}

	appendMessage(chat, reply)
	if err := s.chats.SaveChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("save chat: %w", err)
	}
	return chat.LastMessage(), nil
}

// propose executes the retrieval and structured-proposal steps, returning
// a pending suggestion. None of its failures are retried.
func (s *SuggestionService) propose(ctx context.Context, chat *domain.Chat, query string) (*domain.CodeSuggestion, error) {
	logger.Section("Code Suggestion")

	// Only the cloud index carries full file contents, so suggestions
	// are declared impossible for local-only or linked sources.
	if !chat.ChannelEnabled(domain.ChannelCloud) {
		return nil, domain.ErrCloudRequired
	}
	cloudFiles, ok := s.files[domain.ChannelCloud]
	if !ok {
		return nil, domain.ErrCloudRequired
	}
	if s.model == nil {
		return nil, domain.ErrModelUnavailable
	}

	// Single channel: no fusion needed.
	hits, err := s.retrieval.CloudSearch(ctx, query, FuseLimit)
	if err != nil {
		return nil, fmt.Errorf("cloud retrieval: %w", err)
	}
	logger.Debug("Cloud hits: %d", len(hits))

	editable := make(domain.RankedList, 0, len(hits))
	for _, hit := range hits {
		if domain.IsEditablePath(hit.Path) {
			editable = append(editable, hit)
		}
	}
	if len(editable) == 0 {
		return nil, domain.ErrNoEditableFiles
	}
	logger.Debug("Editable hits: %d", len(editable))

	known, err := cloudFiles.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	proposal, err := s.model.ProposeEdit(ctx, driven.EditRequest{
		History: chat.Messages,
		Context: editable,
		Files:   known,
	})
	if err != nil {
		return nil, err
	}

	target, ok := resolveFile(known, proposal.FilePath)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrFileUnresolved, proposal.FilePath)
	}

	original, err := s.latestContent(ctx, cloudFiles, target)
	if err != nil {
		return nil, fmt.Errorf("fetch original content: %w", err)
	}

	return &domain.CodeSuggestion{
		ID:              uuid.NewString(),
		File:            target,
		OriginalContent: original,
		ProposedContent: proposal.NewContent,
		Rationale:       proposal.Thought,
		Status:          domain.SuggestionPending,
		CreatedAt:       time.Now(),
	}, nil
}

// Accept applies the pending suggestion on the message. The edit record
// is marked durable only when the backing store acknowledges the write;
// read-only sources keep the record local and report not-persisted.
func (s *SuggestionService) Accept(ctx context.Context, chatID, messageID string) (*domain.CodeSuggestion, error) {
	chat, suggestion, err := s.findSuggestion(ctx, chatID, messageID)
	if err != nil {
		return nil, err
	}
	if err := suggestion.Accept(); err != nil {
		return nil, err
	}

	suggestion.Persisted = s.persistEdit(ctx, suggestion)

	record := &domain.EditedFile{
		FileID:          suggestion.File.ID,
		Path:            suggestion.File.Path,
		OriginalContent: suggestion.OriginalContent,
		CurrentContent:  suggestion.ProposedContent,
		Durable:         suggestion.Persisted,
		UpdatedAt:       time.Now(),
	}
	if err := s.edits.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("record edit: %w", err)
	}

	if err := s.chats.SaveChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("save chat: %w", err)
	}

	if !suggestion.Persisted {
		logger.Warn("Edit to %s recorded but not persisted to its source", suggestion.File.Path)
	}
	return suggestion, nil
}

// Reject marks the pending suggestion rejected. No file store or edit
// record is touched.
func (s *SuggestionService) Reject(ctx context.Context, chatID, messageID string) (*domain.CodeSuggestion, error) {
	chat, suggestion, err := s.findSuggestion(ctx, chatID, messageID)
	if err != nil {
		return nil, err
	}
	if err := suggestion.Reject(); err != nil {
		return nil, err
	}

	if err := s.chats.SaveChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("save chat: %w", err)
	}
	return suggestion, nil
}

// persistEdit writes the accepted content back to the owning store.
// Returns true only on an acknowledged write.
func (s *SuggestionService) persistEdit(ctx context.Context, suggestion *domain.CodeSuggestion) bool {
	store, ok := s.files[suggestion.File.Channel]
	if !ok {
		logger.Warn("No file store for channel %s", suggestion.File.Channel)
		return false
	}
	if store.ReadOnly() {
		return false
	}
	if err := store.UpdateContent(ctx, suggestion.File, suggestion.ProposedContent); err != nil {
		logger.Warn("Persisting edit to %s failed: %v", suggestion.File.Path, err)
		return false
	}
	return true
}

// latestContent returns the content a new suggestion must diff against:
// the latest accepted edit when one exists, else the store content.
func (s *SuggestionService) latestContent(
	ctx context.Context, store driven.FileStore, ref domain.FileRef,
) (string, error) {
	if s.edits != nil {
		record, err := s.edits.Get(ctx, ref.ID)
		if err == nil {
			return record.CurrentContent, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return "", err
		}
	}
	return store.GetContent(ctx, ref)
}

// findSuggestion locates the pending suggestion attached to a message.
func (s *SuggestionService) findSuggestion(
	ctx context.Context, chatID, messageID string,
) (*domain.Chat, *domain.CodeSuggestion, error) {
	chat, err := s.chats.GetChat(ctx, chatID)
	if err != nil {
		return nil, nil, fmt.Errorf("load chat: %w", err)
	}
	for i := range chat.Messages {
		if chat.Messages[i].ID == messageID {
			if chat.Messages[i].Suggestion == nil {
				return nil, nil, fmt.Errorf("%w: message has no suggestion", domain.ErrNotFound)
			}
			return chat, chat.Messages[i].Suggestion, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: message %s", domain.ErrNotFound, messageID)
}

// resolveFile matches a proposed path against the known file set by
// exact path first, then by basename. The workflow fails rather than
// fabricate a reference.
func resolveFile(files []domain.FileRef, proposed string) (domain.FileRef, bool) {
	for _, f := range files {
		if f.Path == proposed {
			return f, true
		}
	}
	base := path.Base(proposed)
	for _, f := range files {
		if f.Name == base || path.Base(f.Path) == base {
			return f, true
		}
	}
	return domain.FileRef{}, false
}

// outcomeText renders a workflow failure as the user-visible reply.
func outcomeText(err error) string {
	switch {
	case errors.Is(err, domain.ErrCloudRequired):
		return "Code suggestions need a cloud-indexed source; the current sources cannot provide file contents to edit."
	case errors.Is(err, domain.ErrNoEditableFiles):
		return "No editable files found for this request. Only text, source and config formats can be edited."
	case errors.Is(err, domain.ErrMalformedProposal):
		return "The model returned an unusable edit proposal. Try rephrasing the request."
	case errors.Is(err, domain.ErrFileUnresolved):
		return "The model proposed editing a file that does not exist in the indexed set."
	default:
		return fmt.Sprintf("Could not produce a code suggestion: %v", err)
	}
}

// appendMessage adds a message to the chat and bumps its timestamps.
func appendMessage(chat *domain.Chat, msg domain.Message) {
	chat.Messages = append(chat.Messages, msg)
	chat.UpdatedAt = time.Now()
	if chat.Title == "" && msg.Role == domain.RoleUser {
		chat.Title = deriveTitle(msg.Content)
	}
}
