package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// defaultSearchLimit caps search tool results when the client does not
// ask for a specific limit.
const defaultSearchLimit = 10

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to ask the assistant"`
	ChatID   string `json:"chat_id,omitempty" jsonschema:"chat to run the turn in (default: the active chat)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string           `json:"answer"`
	Sources   []SourceOutput   `json:"sources,omitempty"`
	Citations []CitationOutput `json:"citations,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// SourceOutput is one fused retrieval hit backing an answer.
type SourceOutput struct {
	Path    string  `json:"path"`
	Channel string  `json:"channel"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet,omitempty"`
}

// CitationOutput is one grounding citation from web/maps tools.
type CitationOutput struct {
	URI   string `json:"uri"`
	Title string `json:"title,omitempty"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find documents"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single fused search result.
type SearchResultOutput struct {
	ChunkID  string  `json:"chunk_id"`
	FileID   string  `json:"file_id"`
	FileName string  `json:"file_name"`
	Path     string  `json:"path"`
	Channel  string  `json:"channel"`
	Score    float64 `json:"score"`
	Snippet  string  `json:"snippet,omitempty"`
}

// SuggestInput is the input schema for the suggest tool.
type SuggestInput struct {
	Request string `json:"request" jsonschema:"the code change being requested"`
	ChatID  string `json:"chat_id,omitempty" jsonschema:"chat to attach the suggestion to (default: the active chat)"`
}

// SuggestOutput is the output schema for the suggest tool.
type SuggestOutput struct {
	MessageID       string `json:"message_id"`
	FilePath        string `json:"file_path,omitempty"`
	Rationale       string `json:"rationale,omitempty"`
	ProposedContent string `json:"proposed_content,omitempty"`
	Status          string `json:"status,omitempty"`
	Outcome         string `json:"outcome,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask the document assistant a question and get a grounded answer",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search across all configured document channels with rank fusion",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "suggest",
		Description: "Request a reviewed single-file code suggestion (nothing is applied until accepted)",
	}, s.handleSuggest)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Assistant == nil {
		return nil, AskOutput{}, errors.New("assistant not configured")
	}

	chatID, err := s.resolveChatID(ctx, input.ChatID)
	if err != nil {
		return nil, AskOutput{}, err
	}

	msg, err := s.ports.Assistant.Send(ctx, chatID, input.Question, nil)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer: msg.Content,
		Error:  msg.Err,
	}
	for i := range msg.Context {
		hit := &msg.Context[i]
		output.Sources = append(output.Sources, SourceOutput{
			Path:    hit.Path,
			Channel: hit.Channel.String(),
			Score:   hit.FusedScore,
			Snippet: hit.Snippet,
		})
	}
	for _, c := range msg.Citations {
		output.Citations = append(output.Citations, CitationOutput{URI: c.URI, Title: c.Title})
	}

	return nil, output, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	hits, err := s.ports.Search.Search(ctx, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(hits)),
		Count:   len(hits),
	}

	for i := range hits {
		hit := &hits[i]
		output.Results[i] = SearchResultOutput{
			ChunkID:  hit.ChunkID,
			FileID:   hit.FileID,
			FileName: hit.FileName,
			Path:     hit.Path,
			Channel:  hit.Channel.String(),
			Score:    hit.FusedScore,
			Snippet:  hit.Snippet,
		}
	}

	return nil, output, nil
}

// handleSuggest handles the suggest tool invocation. Terminal workflow
// outcomes (no editable files, unresolvable path, malformed proposal)
// come back as an outcome message rather than a tool error.
func (s *Server) handleSuggest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SuggestInput,
) (*mcp.CallToolResult, SuggestOutput, error) {
	if s.ports.Suggestion == nil {
		return nil, SuggestOutput{}, errors.New("suggestion service not configured")
	}

	chatID, err := s.resolveChatID(ctx, input.ChatID)
	if err != nil {
		return nil, SuggestOutput{}, err
	}

	msg, err := s.ports.Suggestion.Suggest(ctx, chatID, input.Request)
	if err != nil {
		return nil, SuggestOutput{}, err
	}

	output := SuggestOutput{MessageID: msg.ID}
	if msg.Suggestion != nil {
		output.FilePath = msg.Suggestion.File.Path
		output.Rationale = msg.Suggestion.Rationale
		output.ProposedContent = msg.Suggestion.ProposedContent
		output.Status = string(msg.Suggestion.Status)
	} else {
		output.Outcome = msg.Content
	}

	return nil, output, nil
}

// resolveChatID resolves an explicit chat ID or falls back to the
// active chat.
func (s *Server) resolveChatID(ctx context.Context, chatID string) (string, error) {
	if chatID != "" {
		return chatID, nil
	}
	if s.ports.Chat == nil {
		return "", errors.New("chat service not configured")
	}
	chat, err := s.ports.Chat.Active(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve active chat: %w", err)
	}
	return chat.ID, nil
}
