package services

import (
	"context"
	"fmt"

	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
	"github.com/docent-labs/docent-cli/internal/logger"
)

// AnswerStreamer consumes a generation stream into a message record.
type AnswerStreamer struct {
	model driven.ModelService
}

// NewAnswerStreamer creates a new answer streamer.
func NewAnswerStreamer(model driven.ModelService) *AnswerStreamer {
	return &AnswerStreamer{model: model}
}

// Stream generates an answer for req and appends it incrementally to
// msg.Content. Grounding citations are collected deduplicated by source
// URI in arrival order. onDelta, when non-nil, receives each text delta.
//
// msg has exactly one writer: this call. A stream superseded by a newer
// user message still completes into its own message, never a newer one.
// A mid-stream failure keeps the accumulated partial text, annotates
// msg.Err and returns the error; msg is never left in a loading state.
func (s *AnswerStreamer) Stream(
	ctx context.Context,
	req driven.GenerateRequest,
	msg *domain.Message,
	onDelta func(delta string),
) error {
	if s.model == nil {
		msg.Err = domain.ErrModelUnavailable.Error()
		return domain.ErrModelUnavailable
	}

	events, err := s.model.Generate(ctx, req)
	if err != nil {
		msg.Err = err.Error()
		return fmt.Errorf("start generation: %w", err)
	}

	seen := make(map[string]bool)
	for event := range events {
		if event.Err != nil {
			logger.Warn("Stream failed after %d chars: %v", len(msg.Content), event.Err)
			msg.Err = event.Err.Error()
			return fmt.Errorf("generation stream: %w", event.Err)
		}

		if event.Delta != "" {
			msg.Content += event.Delta
			if onDelta != nil {
				onDelta(event.Delta)
			}
		}

		for _, c := range event.Citations {
			if c.URI == "" || seen[c.URI] {
				continue
			}
			seen[c.URI] = true
			msg.Citations = append(msg.Citations, c)
		}
	}

	logger.Debug("Stream complete: %d chars, %d citations", len(msg.Content), len(msg.Citations))
	return nil
}
