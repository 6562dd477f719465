// Package drive provides the linked Google Drive channel. Drive is a
// read-only source: it can be searched and browsed but never written.
package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/docent-labs/docent-cli/internal/adapters/driven/channel/ratelimit"
	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
)

// Ensure Channel implements the interfaces.
var (
	_ driven.SearchChannel = (*Channel)(nil)
	_ driven.FileStore     = (*Channel)(nil)
)

// Google Workspace MIME types that need exporting.
const (
	mimeTypeGoogleDoc    = "application/vnd.google-apps.document"
	mimeTypeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	mimeTypeGoogleSlides = "application/vnd.google-apps.presentation"
	mimeTypeFolder       = "application/vnd.google-apps.folder"

	exportMimeText = "text/plain"
	exportMimeCSV  = "text/csv"
)

// maxContentSize is the maximum size for downloaded content (5MB).
const maxContentSize = 5 * 1024 * 1024

// snippetSize caps the snippet taken from a matched file.
const snippetSize = 500

// listPageSize caps a full file listing.
const listPageSize = 200

// Config holds configuration for the Drive channel.
type Config struct {
	// AccessToken is the Drive API access token (required).
	AccessToken string

	// FolderID restricts search and listing to one folder (optional).
	FolderID string
}

// Channel is the Google Drive search channel and read-only file store.
type Channel struct {
	svc      *drive.Service
	folderID string
	limiter  *ratelimit.Limiter
}

// NewChannel creates a new Drive channel.
func NewChannel(ctx context.Context, cfg Config) (*Channel, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("drive: access token is required")
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})
	svc, err := drive.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("drive: create service: %w", err)
	}

	return &Channel{
		svc:      svc,
		folderID: cfg.FolderID,
		limiter:  ratelimit.New(ratelimit.DriveDefaults),
	}, nil
}

// --- SearchChannel implementation ---

// Name identifies the channel.
func (c *Channel) Name() domain.Channel {
	return domain.ChannelDrive
}

// Search runs a full-text query against Drive. The API reports no
// relevance scores, so result order carries the ranking.
func (c *Channel) Search(ctx context.Context, query string, limit int) (domain.RankedList, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := fmt.Sprintf("fullText contains '%s' and trashed = false", escapeQuery(query))
	if c.folderID != "" {
		q += fmt.Sprintf(" and '%s' in parents", c.folderID)
	}

	call := c.svc.Files.List().
		Context(ctx).
		Q(q).
		PageSize(int64(limit)).
		Fields("files(id, name, mimeType, parents, size)")

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("drive search: %w", err)
	}

	hits := make(domain.RankedList, 0, len(resp.Files))
	for i, file := range resp.Files {
		if file.MimeType == mimeTypeFolder {
			continue
		}
		snippet, err := c.snippet(ctx, file)
		if err != nil {
			// Metadata-only hit; the snippet is best-effort.
			snippet = file.Name
		}
		hits = append(hits, domain.SearchHit{
			ChunkID:  file.Id,
			FileID:   file.Id,
			FileName: file.Name,
			Path:     filePath(file),
			Snippet:  snippet,
			Score:    float64(len(resp.Files) - i),
			Channel:  domain.ChannelDrive,
		})
	}
	return hits, nil
}

// escapeQuery escapes single quotes for the Drive query language.
func escapeQuery(query string) string {
	return strings.ReplaceAll(query, "'", `\'`)
}

// snippet fetches the head of a file's text content.
func (c *Channel) snippet(ctx context.Context, file *drive.File) (string, error) {
	content, err := c.fetchContent(ctx, file)
	if err != nil {
		return "", err
	}
	if len(content) > snippetSize {
		content = content[:snippetSize]
	}
	return strings.TrimSpace(content), nil
}

// --- FileStore implementation ---

// Channel identifies the channel this store belongs to.
func (c *Channel) Channel() domain.Channel {
	return domain.ChannelDrive
}

// ListFiles returns all non-folder files visible to the channel.
func (c *Channel) ListFiles(ctx context.Context) ([]domain.FileRef, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := "trashed = false"
	if c.folderID != "" {
		q += fmt.Sprintf(" and '%s' in parents", c.folderID)
	}

	call := c.svc.Files.List().
		Context(ctx).
		Q(q).
		PageSize(listPageSize).
		Fields("files(id, name, mimeType, parents)")

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("drive list files: %w", err)
	}

	files := make([]domain.FileRef, 0, len(resp.Files))
	for _, file := range resp.Files {
		if file.MimeType == mimeTypeFolder {
			continue
		}
		files = append(files, domain.FileRef{
			ID:      file.Id,
			Name:    file.Name,
			Path:    filePath(file),
			Channel: domain.ChannelDrive,
		})
	}
	return files, nil
}

// GetContent returns the text content of a file, exporting Google
// Workspace formats as needed.
func (c *Channel) GetContent(ctx context.Context, ref domain.FileRef) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	file, err := c.svc.Files.Get(ref.ID).Context(ctx).Fields("id, name, mimeType, size").Do()
	if err != nil {
		return "", fmt.Errorf("drive get file: %w", err)
	}
	return c.fetchContent(ctx, file)
}

// UpdateContent always fails; Drive is a read-only channel.
func (c *Channel) UpdateContent(ctx context.Context, ref domain.FileRef, content string) error {
	return fmt.Errorf("drive: %w", domain.ErrReadOnlyChannel)
}

// ReadOnly reports that Drive never accepts updates.
func (c *Channel) ReadOnly() bool {
	return true
}

// Close releases resources.
func (c *Channel) Close() error {
	return nil
}

// fetchContent retrieves the text content of a file, exporting Google
// Workspace files to plain formats.
func (c *Channel) fetchContent(ctx context.Context, file *drive.File) (string, error) {
	switch file.MimeType {
	case mimeTypeGoogleDoc, mimeTypeGoogleSlides:
		return c.export(ctx, file.Id, exportMimeText)
	case mimeTypeGoogleSheet:
		return c.export(ctx, file.Id, exportMimeCSV)
	}

	if !isTextMime(file.MimeType) || file.Size > maxContentSize {
		return "", nil
	}

	resp, err := c.svc.Files.Get(file.Id).Context(ctx).Download()
	if err != nil {
		return "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxContentSize))
	if err != nil {
		return "", fmt.Errorf("read file content: %w", err)
	}
	return string(data), nil
}

// export converts a Google Workspace file to the given format.
func (c *Channel) export(ctx context.Context, fileID, exportMime string) (string, error) {
	resp, err := c.svc.Files.Export(fileID, exportMime).Context(ctx).Download()
	if err != nil {
		return "", fmt.Errorf("export file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxContentSize))
	if err != nil {
		return "", fmt.Errorf("read export: %w", err)
	}
	return string(data), nil
}

// filePath constructs a simple path representation. Resolving parent
// folder names would cost an API call per ancestor.
func filePath(file *drive.File) string {
	if len(file.Parents) == 0 {
		return "/" + file.Name
	}
	return fmt.Sprintf("/%s/%s", file.Parents[0], file.Name)
}

// isTextMime checks if a MIME type is likely text content.
func isTextMime(mimeType string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}

	textTypes := []string{
		"application/json",
		"application/xml",
		"application/javascript",
		"application/x-yaml",
		"application/x-sh",
		"application/sql",
	}
	for _, t := range textTypes {
		if mimeType == t {
			return true
		}
	}
	return false
}
