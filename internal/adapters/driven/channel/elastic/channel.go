// Package elastic provides the cloud document channel backed by an
// Elasticsearch index. One adapter serves both search and file access;
// it is the only writable remote channel.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
)

// Ensure Channel implements the interfaces.
var (
	_ driven.SearchChannel = (*Channel)(nil)
	_ driven.FileStore     = (*Channel)(nil)
)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second

	// listSize caps a full file listing, matching the index size the
	// hosted tier provisions.
	listSize = 1000
)

// Config holds configuration for the cloud channel.
type Config struct {
	// Endpoint is the Elasticsearch endpoint URL (required).
	Endpoint string

	// APIKey is the Elasticsearch API key (required).
	APIKey string

	// Index is the document index name (required).
	Index string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Channel is the cloud search channel and file store.
type Channel struct {
	client   *http.Client
	endpoint string
	apiKey   string
	index    string
}

// NewChannel creates a new cloud channel.
func NewChannel(cfg Config) (*Channel, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("elastic: endpoint is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("elastic: API key is required")
	}
	if cfg.Index == "" {
		return nil, fmt.Errorf("elastic: index is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Channel{
		client:   &http.Client{Timeout: cfg.Timeout},
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		index:    cfg.Index,
	}, nil
}

// --- Wire formats ---

type searchRequest struct {
	Retriever *retriever `json:"retriever,omitempty"`
	Query     any        `json:"query,omitempty"`
	Size      int        `json:"size"`
	Source    []string   `json:"_source"`
}

// retriever is the hybrid retrieval clause. Lexical and semantic legs
// are fused server-side with reciprocal rank fusion.
type retriever struct {
	RRF struct {
		Retrievers []standardRetriever `json:"retrievers"`
	} `json:"rrf"`
}

type standardRetriever struct {
	Standard struct {
		Query any `json:"query"`
	} `json:"standard"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string  `json:"_id"`
			Score  float64 `json:"_score"`
			Source struct {
				FileName  string `json:"file_name"`
				Path      string `json:"path"`
				ChunkText string `json:"chunk_text"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Error *esError `json:"error,omitempty"`
}

type getResponse struct {
	Found  bool `json:"found"`
	Source struct {
		Content string `json:"content"`
	} `json:"_source"`
	Error *esError `json:"error,omitempty"`
}

type updateResponse struct {
	Result string   `json:"result"`
	Error  *esError `json:"error,omitempty"`
}

type esError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// --- SearchChannel implementation ---

// Name identifies the channel.
func (c *Channel) Name() domain.Channel {
	return domain.ChannelCloud
}

// Search runs a hybrid lexical+semantic query over the document index.
func (c *Channel) Search(ctx context.Context, query string, limit int) (domain.RankedList, error) {
	body := searchRequest{
		Retriever: hybridRetriever(query),
		Size:      limit,
		Source:    []string{"file_name", "path", "chunk_text"},
	}

	var decoded searchResponse
	if err := c.do(ctx, http.MethodPost, c.searchPath(), body, &decoded); err != nil {
		return nil, fmt.Errorf("elastic search: %w", err)
	}

	hits := make(domain.RankedList, 0, len(decoded.Hits.Hits))
	for _, h := range decoded.Hits.Hits {
		if h.Source.ChunkText == "" {
			continue
		}
		hits = append(hits, domain.SearchHit{
			ChunkID:  h.ID,
			FileID:   h.ID,
			FileName: h.Source.FileName,
			Path:     h.Source.Path,
			Snippet:  h.Source.ChunkText,
			Score:    h.Score,
			Channel:  domain.ChannelCloud,
		})
	}
	return hits, nil
}

// hybridRetriever builds the lexical and semantic legs for one query.
func hybridRetriever(query string) *retriever {
	lexical := standardRetriever{}
	lexical.Standard.Query = map[string]any{
		"match": map[string]any{
			"chunk_text": map[string]any{"query": query},
		},
	}

	semantic := standardRetriever{}
	semantic.Standard.Query = map[string]any{
		"semantic": map[string]any{
			"field": "chunk_semantic",
			"query": query,
		},
	}

	r := &retriever{}
	r.RRF.Retrievers = []standardRetriever{lexical, semantic}
	return r
}

// --- FileStore implementation ---

// Channel identifies the channel this store belongs to.
func (c *Channel) Channel() domain.Channel {
	return domain.ChannelCloud
}

// ListFiles returns all files known to the index.
func (c *Channel) ListFiles(ctx context.Context) ([]domain.FileRef, error) {
	body := searchRequest{
		Query:  map[string]any{"match_all": map[string]any{}},
		Size:   listSize,
		Source: []string{"file_name", "path"},
	}

	var decoded searchResponse
	if err := c.do(ctx, http.MethodPost, c.searchPath(), body, &decoded); err != nil {
		return nil, fmt.Errorf("elastic list files: %w", err)
	}

	files := make([]domain.FileRef, 0, len(decoded.Hits.Hits))
	for _, h := range decoded.Hits.Hits {
		files = append(files, domain.FileRef{
			ID:      h.ID,
			Name:    h.Source.FileName,
			Path:    h.Source.Path,
			Channel: domain.ChannelCloud,
		})
	}
	return files, nil
}

// GetContent returns the stored content of a file.
func (c *Channel) GetContent(ctx context.Context, ref domain.FileRef) (string, error) {
	path := fmt.Sprintf("/%s/_doc/%s", c.index, url.PathEscape(ref.ID))

	var decoded getResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &decoded); err != nil {
		return "", fmt.Errorf("elastic get content: %w", err)
	}
	if !decoded.Found {
		return "", fmt.Errorf("elastic get content: %s: %w", ref.ID, domain.ErrNotFound)
	}
	return decoded.Source.Content, nil
}

// UpdateContent replaces a file's stored content with a partial update.
func (c *Channel) UpdateContent(ctx context.Context, ref domain.FileRef, content string) error {
	path := fmt.Sprintf("/%s/_update/%s", c.index, url.PathEscape(ref.ID))
	body := map[string]any{
		"doc": map[string]any{"content": content},
	}

	var decoded updateResponse
	if err := c.do(ctx, http.MethodPost, path, body, &decoded); err != nil {
		return fmt.Errorf("elastic update content: %w", err)
	}
	return nil
}

// ReadOnly reports that the cloud index accepts updates.
func (c *Channel) ReadOnly() bool {
	return false
}

// Close releases resources.
func (c *Channel) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// --- HTTP plumbing ---

func (c *Channel) searchPath() string {
	return fmt.Sprintf("/%s/_search", c.index)
}

// do issues one request and decodes the response, surfacing the index's
// own error payload when present.
func (c *Channel) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "ApiKey "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if apiErr := extractError(out); apiErr != nil {
		return fmt.Errorf("index error: %s: %s", apiErr.Type, apiErr.Reason)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if resp.StatusCode == http.StatusNotFound {
			return domain.ErrNotFound
		}
		return fmt.Errorf("index error (status %d): %s", resp.StatusCode, string(raw))
	}
	return nil
}

// extractError pulls the error payload out of known response shapes.
func extractError(out any) *esError {
	switch v := out.(type) {
	case *searchResponse:
		return v.Error
	case *getResponse:
		// A missing document decodes with found=false rather than an
		// error payload; let the caller decide.
		return v.Error
	case *updateResponse:
		return v.Error
	}
	return nil
}
