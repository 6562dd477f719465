package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
	"github.com/docent-labs/docent-cli/internal/core/ports/driving"
	"github.com/docent-labs/docent-cli/internal/logger"
)

// Ensure AssistantService implements the interface.
var _ driving.AssistantService = (*AssistantService)(nil)

// noResultsReply is the terminal response when retrieval finds nothing
// and no grounding tool can take over. A valid outcome, not an error.
const noResultsReply = "I couldn't find any relevant information in the connected sources for that question."

// AssistantService orchestrates conversational turns. All chat mutation
// funnels through here (and the suggestion workflow), one writer per
// message, with a persist after every completed mutation.
type AssistantService struct {
	chats       driven.ChatStore
	router      *IntentRouter
	retrieval   *RetrievalService
	streamer    *AnswerStreamer
	suggestions driving.SuggestionService
}

// NewAssistantService creates a new assistant orchestrator.
func NewAssistantService(
	chats driven.ChatStore,
	router *IntentRouter,
	retrieval *RetrievalService,
	streamer *AnswerStreamer,
	suggestions driving.SuggestionService,
) *AssistantService {
	return &AssistantService{
		chats:       chats,
		router:      router,
		retrieval:   retrieval,
		streamer:    streamer,
		suggestions: suggestions,
	}
}

// Send runs one full turn: classify the text, route it to chit-chat,
// document retrieval or the code-suggestion workflow, and stream the
// reply into a new model message. Returns the completed reply message;
// a non-nil error means the turn could not run at all.
func (s *AssistantService) Send(
	ctx context.Context, chatID, text string, onDelta func(delta string),
) (*domain.Message, error) {
	chat, err := s.chats.GetChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("load chat: %w", err)
	}

	intent := s.router.Route(ctx, chat, text)

	// The suggestion workflow owns its whole turn, including the user
	// message, so delegate before touching the chat.
	if intent == domain.IntentGenerateCode {
		return s.suggestions.Suggest(ctx, chatID, text)
	}

	appendMessage(chat, domain.Message{
		ID:        uuid.NewString(),
		ChatID:    chat.ID,
		Role:      domain.RoleUser,
		Content:   text,
		CreatedAt: time.Now(),
	})

	var msg *domain.Message
	switch intent {
	case domain.IntentQueryDocuments:
		msg = s.answerFromDocuments(ctx, chat, text, onDelta)
	default:
		msg = s.chitChat(ctx, chat, onDelta)
	}

	if err := s.chats.SaveChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("save chat: %w", err)
	}
	return msg, nil
}

// newReply appends an empty model message to the chat and returns the
// stable pointer the stream writes into.
func newReply(chat *domain.Chat) *domain.Message {
	appendMessage(chat, domain.Message{
		ID:        uuid.NewString(),
		ChatID:    chat.ID,
		Role:      domain.RoleModel,
		CreatedAt: time.Now(),
	})
	return chat.LastMessage()
}

// chitChat streams a direct conversational reply with no retrieval.
func (s *AssistantService) chitChat(
	ctx context.Context, chat *domain.Chat, onDelta func(string),
) *domain.Message {
	msg := newReply(chat)
	// Stream errors are already annotated on the message; the partial
	// text stays.
	_ = s.streamer.Stream(ctx, driven.GenerateRequest{
		History: historyBefore(chat, msg.ID),
	}, msg, onDelta)
	return msg
}

// answerFromDocuments runs a retrieval pass and generates down the path
// it decides.
func (s *AssistantService) answerFromDocuments(
	ctx context.Context, chat *domain.Chat, query string, onDelta func(string),
) *domain.Message {
	pass := s.retrieval.Retrieve(ctx, chat, query)

	// Surface channel-specific failures before the reply; the channels
	// stay disabled for the rest of the conversation.
	for ch, chErr := range pass.ChannelErrors {
		appendMessage(chat, domain.Message{
			ID:        uuid.NewString(),
			ChatID:    chat.ID,
			Role:      domain.RoleSystem,
			Content:   fmt.Sprintf("Source %q failed and was disabled for this conversation: %v", ch, chErr),
			CreatedAt: time.Now(),
		})
	}

	msg := newReply(chat)
	switch pass.Decision {
	case DecideNoResults:
		msg.Content = noResultsReply
		if onDelta != nil {
			onDelta(noResultsReply)
		}

	case DecideAnswerGrounded:
		logger.Info("No retrieval hits, falling back to grounded generation")
		_ = s.streamer.Stream(ctx, driven.GenerateRequest{
			History:   historyBefore(chat, msg.ID),
			Grounding: chat.Grounding,
		}, msg, onDelta)

	default:
		// Citations are set from the completed search before generation
		// and only a later fusion pass may replace them.
		msg.Context = pass.Hits
		_ = s.streamer.Stream(ctx, driven.GenerateRequest{
			History:   historyBefore(chat, msg.ID),
			Context:   pass.Hits,
			Grounding: chat.Grounding,
		}, msg, onDelta)
	}
	return msg
}

// historyBefore returns the conversation up to, but excluding, the
// message being generated.
func historyBefore(chat *domain.Chat, msgID string) []domain.Message {
	for i := range chat.Messages {
		if chat.Messages[i].ID == msgID {
			return chat.Messages[:i]
		}
	}
	return chat.Messages
}
