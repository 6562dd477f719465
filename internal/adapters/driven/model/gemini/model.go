// Package gemini provides a ModelService adapter using the Gemini API.
// It is the only provider with web/maps grounding tools.
package gemini

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
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Gemini model service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL is the API base URL (default: the public endpoint).
	BaseURL string

	// Model is the model to use (default: gemini-2.0-flash).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// ModelService provides model operations using the Gemini API.
type ModelService struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	promptStore driven.PromptStore
}

// NewModelService creates a new Gemini model service.
func NewModelService(cfg Config) (*ModelService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
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

// --- Wire formats ---

type generateContentRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Tools             []tool            `json:"tools,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type tool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
	GoogleMaps   *struct{} `json:"google_maps,omitempty"`
}

type generationConfig struct {
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// --- ModelService implementation ---

// Classify determines the intent of the latest user text.
func (s *ModelService) Classify(ctx context.Context, text string) (domain.Intent, error) {
	promptTemplate := s.loadPrompt(driven.PromptClassifyIntent, defaultClassifyPrompt)
	prompt := fmt.Sprintf(promptTemplate, text)

	raw, err := s.generateOnce(ctx, []content{userText(prompt)}, nil, &generationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      0.0,
	})
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

// RewriteQuery transforms user phrasing into a search-optimised query.
func (s *ModelService) RewriteQuery(ctx context.Context, query string) (string, error) {
	promptTemplate := s.loadPrompt(driven.PromptQueryRewrite, defaultQueryRewritePrompt)
	prompt := fmt.Sprintf(promptTemplate, query)

	raw, err := s.generateOnce(ctx, []content{userText(prompt)}, nil, &generationConfig{
		Temperature:     0.3,
		MaxOutputTokens: 100,
	})
	if err != nil {
		return "", fmt.Errorf("rewrite query: %w", err)
	}
	return strings.TrimSpace(raw), nil
}

// Generate streams an answer for the conversation over SSE.
func (s *ModelService) Generate(ctx context.Context, req driven.GenerateRequest) (<-chan driven.StreamEvent, error) {
	body := generateContentRequest{
		Contents:          historyToContents(req.History),
		SystemInstruction: s.systemInstruction(req),
		Tools:             groundingTools(req.Grounding),
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", s.baseURL, s.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(raw))
	}

	events := make(chan driven.StreamEvent)
	go s.consumeSSE(resp.Body, events)
	return events, nil
}

// consumeSSE reads the event stream and forwards deltas until EOF or a
// stream error. The events channel is always closed.
func (s *ModelService) consumeSSE(body io.ReadCloser, events chan<- driven.StreamEvent) {
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
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk generateContentResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			events <- driven.StreamEvent{Err: fmt.Errorf("decode stream chunk: %w", err)}
			return
		}
		if chunk.Error != nil {
			events <- driven.StreamEvent{Err: fmt.Errorf("gemini error: %s", chunk.Error.Message)}
			return
		}

		event := chunkToEvent(chunk)
		if event.Delta != "" || len(event.Citations) > 0 {
			events <- event
		}
	}

	if err := scanner.Err(); err != nil {
		events <- driven.StreamEvent{Err: fmt.Errorf("read stream: %w", err)}
	}
}

// chunkToEvent extracts the text delta and grounding citations from one
// stream chunk.
func chunkToEvent(chunk generateContentResponse) driven.StreamEvent {
	var event driven.StreamEvent
	for _, cand := range chunk.Candidates {
		for _, p := range cand.Content.Parts {
			event.Delta += p.Text
		}
		if cand.GroundingMetadata == nil {
			continue
		}
		for _, gc := range cand.GroundingMetadata.GroundingChunks {
			if gc.Web == nil || gc.Web.URI == "" {
				continue
			}
			event.Citations = append(event.Citations, domain.Citation{
				URI:   gc.Web.URI,
				Title: gc.Web.Title,
			})
		}
	}
	return event
}

// ProposeEdit requests a single structured edit proposal.
func (s *ModelService) ProposeEdit(ctx context.Context, req driven.EditRequest) (driven.EditProposal, error) {
	promptTemplate := s.loadPrompt(driven.PromptCodeEdit, defaultCodeEditPrompt)
	prompt := fmt.Sprintf(promptTemplate, formatFileList(req.Files), formatHitContext(req.Context))

	contents := historyToContents(req.History)
	contents = append(contents, userText(prompt))

	raw, err := s.generateOnce(ctx, contents, nil, &generationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      0.2,
	})
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

// SupportsGrounding reports that web/maps tools are available.
func (s *ModelService) SupportsGrounding() bool {
	return true
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

// Ping validates the service is reachable by listing models.
// This is a lightweight check that validates the API key without running inference.
func (s *ModelService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("gemini: failed to create ping request: %w", err)
	}
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gemini: API returned status %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}

// Close releases resources.
func (s *ModelService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// generateOnce runs a non-streaming generateContent call and returns the
// concatenated candidate text.
func (s *ModelService) generateOnce(
	ctx context.Context, contents []content, tools []tool, cfg *generationConfig,
) (string, error) {
	body := generateContentRequest{
		Contents:         contents,
		Tools:            tools,
		GenerationConfig: cfg,
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", s.baseURL, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("gemini error: %s", decoded.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(raw))
	}
	if len(decoded.Candidates) == 0 {
		return "", fmt.Errorf("gemini: no candidates returned")
	}

	var text strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return text.String(), nil
}

// systemInstruction builds the system prompt, folding retrieved context
// in when present.
func (s *ModelService) systemInstruction(req driven.GenerateRequest) *content {
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
	return &content{Parts: []part{{Text: sb.String()}}}
}

// groundingTools maps grounding options to Gemini tool declarations.
func groundingTools(opts domain.GroundingOptions) []tool {
	var tools []tool
	if opts.WebSearch {
		tools = append(tools, tool{GoogleSearch: &struct{}{}})
	}
	if opts.Maps {
		tools = append(tools, tool{GoogleMaps: &struct{}{}})
	}
	return tools
}

// historyToContents converts the conversation for the wire. System
// status messages are internal and not sent to the model.
func historyToContents(history []domain.Message) []content {
	contents := make([]content, 0, len(history))
	for _, msg := range history {
		if msg.Role == domain.RoleSystem || msg.Content == "" {
			continue
		}
		role := "user"
		if msg.Role == domain.RoleModel {
			role = "model"
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: msg.Content}}})
	}
	return contents
}

func userText(text string) content {
	return content{Role: "user", Parts: []part{{Text: text}}}
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
