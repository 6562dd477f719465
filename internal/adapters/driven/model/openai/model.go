// Package openai provides a ModelService adapter for OpenAI-compatible APIs.
// It has no grounding tools; grounded fallback answers route to Gemini.
package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
)

// Ensure ModelService implements the interface.
var _ driven.ModelService = (*ModelService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI model service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// ModelService provides model operations using an OpenAI-compatible API.
type ModelService struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	promptStore driven.PromptStore
}

// chatCompletionRequest is the OpenAI /chat/completions request format.
type chatCompletionRequest struct {
	Model          string              `json:"model"`
	Messages       []chatCompletionMsg `json:"messages"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
	Temperature    *float64            `json:"temperature,omitempty"`
	Stream         bool                `json:"stream,omitempty"`
	ResponseFormat *responseFormat     `json:"response_format,omitempty"`
}

// chatCompletionMsg is the OpenAI chat message format.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatCompletionResponse is the OpenAI /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// chatCompletionChunk is one SSE chunk of a streamed completion.
type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewModelService creates a new OpenAI model service.
func NewModelService(cfg Config) (*ModelService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &ModelService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Classify determines the intent of the latest user text.
func (s *ModelService) Classify(ctx context.Context, text string) (domain.Intent, error) {
	promptTemplate := s.loadPrompt(driven.PromptClassifyIntent, defaultClassifyPrompt)
	prompt := fmt.Sprintf(promptTemplate, text)

	raw, err := s.chatCompletion(ctx, []chatCompletionMsg{
		{Role: "user", Content: prompt},
	}, chatOptions{temperature: ptr(0.0), jsonMode: true})
	if err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}

	var payload struct {
		Intent string `json:"intent"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return "", fmt.Errorf("classify: decode %q: %w", raw, err)
	}
	return domain.Intent(payload.Intent), nil
}

// RewriteQuery expands or rewrites a search query for better recall.
func (s *ModelService) RewriteQuery(ctx context.Context, query string) (string, error) {
	promptTemplate := s.loadPrompt(driven.PromptQueryRewrite, defaultQueryRewritePrompt)
	prompt := fmt.Sprintf(promptTemplate, query)

	raw, err := s.chatCompletion(ctx, []chatCompletionMsg{
		{Role: "user", Content: prompt},
	}, chatOptions{temperature: ptr(0.3), maxTokens: 100})
	if err != nil {
		return "", fmt.Errorf("rewrite query: %w", err)
	}
	return strings.TrimSpace(raw), nil
}

// Generate streams an answer for the conversation. Grounding options are
// ignored; this provider has no grounding tools.
func (s *ModelService) Generate(ctx context.Context, req driven.GenerateRequest) (<-chan driven.StreamEvent, error) {
	messages := append(
		[]chatCompletionMsg{{Role: "system", Content: s.systemPrompt(req)}},
		historyToMessages(req.History)...,
	)

	reqBody := chatCompletionRequest{
		Model:    s.model,
		Messages: messages,
		Stream:   true,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(body))
	}

	events := make(chan driven.StreamEvent)
	go consumeSSE(resp.Body, events)
	return events, nil
}

// consumeSSE reads the event stream and forwards deltas until [DONE] or a
// stream error. The events channel is always closed.
func consumeSSE(body io.ReadCloser, events chan<- driven.StreamEvent) {
	defer close(events)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			return
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			events <- driven.StreamEvent{Err: fmt.Errorf("decode stream chunk: %w", err)}
			return
		}
		if chunk.Error != nil {
			events <- driven.StreamEvent{Err: fmt.Errorf("openai error: %s", chunk.Error.Message)}
			return
		}

		for _, choice := range chunk.Choices {
			if choice.Delta.Content != "" {
				events <- driven.StreamEvent{Delta: choice.Delta.Content}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		events <- driven.StreamEvent{Err: fmt.Errorf("read stream: %w", err)}
	}
}

// ProposeEdit requests a single structured edit proposal.
func (s *ModelService) ProposeEdit(ctx context.Context, req driven.EditRequest) (driven.EditProposal, error) {
	promptTemplate := s.loadPrompt(driven.PromptCodeEdit, defaultCodeEditPrompt)
	prompt := fmt.Sprintf(promptTemplate, formatFileList(req.Files), formatHitContext(req.Context))

	messages := append(historyToMessages(req.History), chatCompletionMsg{Role: "user", Content: prompt})

	raw, err := s.chatCompletion(ctx, messages, chatOptions{temperature: ptr(0.2), jsonMode: true})
	if err != nil {
		return driven.EditProposal{}, fmt.Errorf("propose edit: %w", err)
	}
	return parseProposal(raw)
}

// parseProposal validates the structured output against the expected
// schema. Any mismatch is a structured-output failure, never a crash.
func parseProposal(raw string) (driven.EditProposal, error) {
	var payload struct {
		FilePath   *string `json:"filePath"`
		NewContent *string `json:"newContent"`
		Thought    *string `json:"thought"`
		Error      string  `json:"error"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return driven.EditProposal{}, fmt.Errorf("%w: invalid JSON: %v", domain.ErrMalformedProposal, err)
	}
	if payload.Error != "" {
		return driven.EditProposal{}, fmt.Errorf("%w: model reported: %s", domain.ErrMalformedProposal, payload.Error)
	}
	if payload.FilePath == nil || *payload.FilePath == "" {
		return driven.EditProposal{}, fmt.Errorf("%w: missing filePath", domain.ErrMalformedProposal)
	}
	if payload.NewContent == nil {
		return driven.EditProposal{}, fmt.Errorf("%w: missing newContent", domain.ErrMalformedProposal)
	}

	proposal := driven.EditProposal{
		FilePath:   *payload.FilePath,
		NewContent: *payload.NewContent,
	}
	if payload.Thought != nil {
		proposal.Thought = *payload.Thought
	}
	return proposal, nil
}

// SupportsGrounding reports that no web/maps tools are available.
func (s *ModelService) SupportsGrounding() bool {
	return false
}

// ModelName returns the name of the model being used.
func (s *ModelService) ModelName() string {
	return s.model
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses hardcoded default prompts.
func (s *ModelService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Ping validates the service is reachable by checking the /models endpoint.
// This is a lightweight check that validates the API key without running inference.
func (s *ModelService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("openai: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *ModelService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// chatOptions configures one non-streaming completion.
type chatOptions struct {
	temperature *float64
	maxTokens   int
	jsonMode    bool
}

// chatCompletion is the internal implementation for all non-streaming calls.
func (s *ModelService) chatCompletion(
	ctx context.Context, messages []chatCompletionMsg, opts chatOptions,
) (string, error) {
	reqBody := chatCompletionRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: opts.temperature,
	}
	if opts.maxTokens > 0 {
		reqBody.MaxTokens = opts.maxTokens
	}
	if opts.jsonMode {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("openai error: %s", chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("openai: no response choices returned")
	}
	return chatResp.Choices[0].Message.Content, nil
}

// systemPrompt builds the system message, folding retrieved context in
// when present.
func (s *ModelService) systemPrompt(req driven.GenerateRequest) string {
	var sb strings.Builder
	if len(req.Context) > 0 {
		sb.WriteString(s.loadPrompt(driven.PromptAnswerSystem, defaultAnswerSystemPrompt))
		sb.WriteString("\n\nRetrieved context:\n")
		for _, h := range req.Context {
			fmt.Fprintf(&sb, "--- %s (%s)\n%s\n", h.FileName, h.Path, h.Snippet)
		}
	} else {
		sb.WriteString(s.loadPrompt(driven.PromptChitChat, defaultChitChatPrompt))
	}
	return sb.String()
}

// historyToMessages converts the conversation for the wire. System status
// messages are internal and not sent to the model.
func historyToMessages(history []domain.Message) []chatCompletionMsg {
	messages := make([]chatCompletionMsg, 0, len(history))
	for _, msg := range history {
		if msg.Role == domain.RoleSystem || msg.Content == "" {
			continue
		}
		role := "user"
		if msg.Role == domain.RoleModel {
			role = "assistant"
		}
		messages = append(messages, chatCompletionMsg{Role: role, Content: msg.Content})
	}
	return messages
}

// formatFileList renders the known file set for the edit prompt.
func formatFileList(files []domain.FileRef) string {
	var sb strings.Builder
	for _, f := range files {
		sb.WriteString(f.Path)
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatHitContext renders retrieval hits for the edit prompt.
func formatHitContext(hits []domain.SearchHit) string {
	var sb strings.Builder
	for _, h := range hits {
		fmt.Fprintf(&sb, "--- %s\n%s\n", h.Path, h.Snippet)
	}
	return sb.String()
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (s *ModelService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}

func ptr(v float64) *float64 { return &v }

// defaultClassifyPrompt is the fallback prompt when no PromptStore is configured.
const defaultClassifyPrompt = `Classify the user message into exactly one intent.

Intents:
- CHIT_CHAT: greetings, small talk, questions about the assistant itself
- QUERY_DOCUMENTS: questions answerable from the user's connected documents
- GENERATE_CODE: requests to write, change or fix code

Respond with JSON: {"intent": "<INTENT>"}

Message: %s`

// defaultQueryRewritePrompt is the fallback prompt when no PromptStore is configured.
const defaultQueryRewritePrompt = `Rewrite this search query to improve recall. Add synonyms and fix typos.
Return ONLY the rewritten query, nothing else.

Original: %s
Rewritten:`

// defaultAnswerSystemPrompt is the fallback prompt when no PromptStore is configured.
const defaultAnswerSystemPrompt = `You are a helpful assistant. Answer the user's question using the
retrieved context below. When the context does not cover the question, say so
rather than guessing. Keep answers concise.`

// defaultChitChatPrompt is the fallback prompt when no PromptStore is configured.
const defaultChitChatPrompt = `You are a helpful, friendly assistant. Reply conversationally and keep
answers concise.`

// defaultCodeEditPrompt is the fallback prompt when no PromptStore is configured.
const defaultCodeEditPrompt = `Propose a single file edit that fulfils the user's request.
You may only target one of these files:
%s
Relevant context:
%s
Respond with JSON: {"filePath": "<path>", "newContent": "<full file content>", "thought": "<rationale>"}
If no sensible edit exists, respond with JSON: {"error": "<reason>"}`
