// Package github provides the linked GitHub repository channel. The
// repository is a read-only source: code search and file browsing only.
package github

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/docent-labs/docent-cli/internal/adapters/driven/channel/ratelimit"
	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
)

// Ensure Channel implements the interfaces.
var (
	_ driven.SearchChannel = (*Channel)(nil)
	_ driven.FileStore     = (*Channel)(nil)
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// maxFileSize caps listed files at 1MB; larger blobs are skipped.
const maxFileSize = 1024 * 1024

// Config holds configuration for the GitHub channel.
type Config struct {
	// Token is a PAT or OAuth access token (required).
	Token string

	// Owner is the repository owner (required).
	Owner string

	// Repo is the repository name (required).
	Repo string

	// Branch is the ref to browse (default: the repository default branch).
	Branch string
}

// Channel is the GitHub search channel and read-only file store.
type Channel struct {
	gh      *gh.Client
	owner   string
	repo    string
	branch  string
	limiter *ratelimit.Limiter
}

// NewChannel creates a new GitHub channel.
func NewChannel(ctx context.Context, cfg Config) (*Channel, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("github: token is required")
	}
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("github: owner and repo are required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout

	return &Channel{
		gh:      gh.NewClient(tc),
		owner:   cfg.Owner,
		repo:    cfg.Repo,
		branch:  cfg.Branch,
		limiter: ratelimit.New(ratelimit.GitHubDefaults),
	}, nil
}

// --- SearchChannel implementation ---

// Name identifies the channel.
func (c *Channel) Name() domain.Channel {
	return domain.ChannelGitHub
}

// Search runs a code search scoped to the repository. Text-match
// fragments become snippets.
func (c *Channel) Search(ctx context.Context, query string, limit int) (domain.RankedList, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := fmt.Sprintf("%s repo:%s/%s", query, c.owner, c.repo)
	opts := &gh.SearchOptions{
		TextMatch:   true,
		ListOptions: gh.ListOptions{PerPage: limit},
	}

	result, resp, err := c.gh.Search.Code(ctx, q, opts)
	if err != nil {
		if resp != nil && resp.StatusCode == 429 {
			c.limiter.RecordRateLimitError(0)
		}
		return nil, fmt.Errorf("github search: %w", err)
	}

	hits := make(domain.RankedList, 0, len(result.CodeResults))
	for i, item := range result.CodeResults {
		if limit > 0 && i >= limit {
			break
		}
		path := item.GetPath()
		hits = append(hits, domain.SearchHit{
			ChunkID:  fmt.Sprintf("%s/%s:%s", c.owner, c.repo, path),
			FileID:   path,
			FileName: filepath.Base(path),
			Path:     path,
			Snippet:  textMatchSnippet(item),
			Score:    searchScore(item, len(result.CodeResults), i),
			Channel:  domain.ChannelGitHub,
		})
	}
	return hits, nil
}

// textMatchSnippet joins the search fragments, falling back to the path
// when the API returns no text matches.
func textMatchSnippet(item *gh.CodeResult) string {
	var fragments []string
	for _, tm := range item.TextMatches {
		if f := tm.GetFragment(); f != "" {
			fragments = append(fragments, f)
		}
	}
	if len(fragments) == 0 {
		return item.GetPath()
	}
	return strings.Join(fragments, "\n")
}

// searchScore prefers the API score and falls back to position order.
func searchScore(item *gh.CodeResult, total, index int) float64 {
	if item.Score != nil && *item.Score > 0 {
		return *item.Score
	}
	return float64(total - index)
}

// --- FileStore implementation ---

// Channel identifies the channel this store belongs to.
func (c *Channel) Channel() domain.Channel {
	return domain.ChannelGitHub
}

// ListFiles returns all text blobs in the repository tree.
func (c *Channel) ListFiles(ctx context.Context) ([]domain.FileRef, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ref, err := c.ref(ctx)
	if err != nil {
		return nil, err
	}

	tree, _, err := c.gh.Git.GetTree(ctx, c.owner, c.repo, ref, true)
	if err != nil {
		return nil, fmt.Errorf("github get tree: %w", err)
	}

	files := make([]domain.FileRef, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		path := entry.GetPath()
		if isBinaryExtension(path) || entry.GetSize() > maxFileSize {
			continue
		}
		files = append(files, domain.FileRef{
			ID:      path,
			Name:    filepath.Base(path),
			Path:    path,
			Channel: domain.ChannelGitHub,
		})
	}
	return files, nil
}

// GetContent returns the decoded content of a file.
func (c *Channel) GetContent(ctx context.Context, ref domain.FileRef) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	opts := &gh.RepositoryContentGetOptions{Ref: c.branch}
	content, _, resp, err := c.gh.Repositories.GetContents(ctx, c.owner, c.repo, ref.ID, opts)
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return "", fmt.Errorf("github: %s: %w", ref.ID, domain.ErrNotFound)
		}
		return "", fmt.Errorf("github get contents: %w", err)
	}
	if content == nil {
		return "", fmt.Errorf("github: %s is a directory, not a file", ref.ID)
	}

	decoded, err := content.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode content: %w", err)
	}
	return decoded, nil
}

// UpdateContent always fails; the repository channel is read-only.
func (c *Channel) UpdateContent(ctx context.Context, ref domain.FileRef, content string) error {
	return fmt.Errorf("github: %w", domain.ErrReadOnlyChannel)
}

// ReadOnly reports that the repository never accepts updates.
func (c *Channel) ReadOnly() bool {
	return true
}

// Close releases resources.
func (c *Channel) Close() error {
	return nil
}

// ref returns the configured branch, resolving the repository default
// branch when none is set.
func (c *Channel) ref(ctx context.Context) (string, error) {
	if c.branch != "" {
		return c.branch, nil
	}

	repo, _, err := c.gh.Repositories.Get(ctx, c.owner, c.repo)
	if err != nil {
		return "", fmt.Errorf("github get repo: %w", err)
	}
	c.branch = repo.GetDefaultBranch()
	return c.branch, nil
}

// binaryExtensions lists extensions never worth fetching as text.
var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true,
	".pdf": true, ".zip": true, ".tar": true, ".gz": true, ".bz2": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".bin": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true, ".webm": true,
}

func isBinaryExtension(path string) bool {
	return binaryExtensions[strings.ToLower(filepath.Ext(path))]
}
