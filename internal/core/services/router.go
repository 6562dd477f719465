package services

import (
	"context"

	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
	"github.com/docent-labs/docent-cli/internal/logger"
)

// IntentRouter classifies user messages into handling paths.
type IntentRouter struct {
	model driven.ModelService
}

// NewIntentRouter creates a new intent router.
func NewIntentRouter(model driven.ModelService) *IntentRouter {
	return &IntentRouter{model: model}
}

// Route classifies the latest user text for the chat. Classification
// failure is reported in the log, not to the caller: the router falls
// back to QUERY_DOCUMENTS when the chat has any retrieval or grounding
// source active, else CHIT_CHAT, and the conversation continues degraded.
func (r *IntentRouter) Route(ctx context.Context, chat *domain.Chat, text string) domain.Intent {
	if r.model == nil {
		logger.Warn("Intent routing: no model service, using fallback")
		return r.fallback(chat)
	}

	intent, err := r.model.Classify(ctx, text)
	if err != nil {
		logger.Warn("Intent classification failed: %v (using fallback)", err)
		return r.fallback(chat)
	}
	if !intent.IsValid() {
		logger.Warn("Intent classification returned %q (using fallback)", intent)
		return r.fallback(chat)
	}

	logger.Info("Intent: %s", intent.Description())
	return intent
}

// fallback picks the conservative default when classification is
// unavailable. With a retrieval source active, answering from documents
// is safer than guessing chit-chat.
func (r *IntentRouter) fallback(chat *domain.Chat) domain.Intent {
	if chat != nil && chat.RetrievalActive() {
		return domain.IntentQueryDocuments
	}
	return domain.IntentChitChat
}
