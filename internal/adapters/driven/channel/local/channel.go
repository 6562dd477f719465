// Package local provides the client-side document channel. Documents
// under a root directory are indexed in-process and searched by keyword
// scoring; a filesystem watcher keeps the index current.
package local

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
	"github.com/docent-labs/docent-cli/internal/logger"
)

// Ensure Channel implements the interfaces.
var (
	_ driven.SearchChannel = (*Channel)(nil)
	_ driven.FileStore     = (*Channel)(nil)
)

const (
	// maxFileSize caps indexed files at 1MB. Larger files are skipped.
	maxFileSize = 1 << 20

	// snippetLines is the window of lines returned around the best match.
	snippetLines = 5
)

// document is one indexed file. content is the raw file text served
// through the file store; searchText is the markup-stripped form the
// index scores.
type document struct {
	id         string
	name       string
	relPath    string
	absPath    string
	content    string
	searchText string
}

// Channel indexes and searches documents under a root directory.
type Channel struct {
	root string

	mu   sync.RWMutex
	docs map[string]*document

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewChannel indexes the root directory and starts watching it for
// changes. Close must be called to release the watcher.
func NewChannel(root string) (*Channel, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("local: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("local: root %s is not a directory", root)
	}

	c := &Channel{
		root: root,
		docs: make(map[string]*document),
		done: make(chan struct{}),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("local: create watcher: %w", err)
	}
	c.watcher = watcher

	if err := c.scan(); err != nil {
		watcher.Close()
		return nil, err
	}

	go c.watch()
	return c, nil
}

// scan walks the root and (re)builds the index. Directories are added
// to the watcher as they are discovered.
func (c *Channel) scan() error {
	docs := make(map[string]*document)

	err := filepath.WalkDir(c.root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := entry.Name()
		if entry.IsDir() {
			if strings.HasPrefix(name, ".") && path != c.root {
				return filepath.SkipDir
			}
			if werr := c.watcher.Add(path); werr != nil {
				logger.Warn("local: watch %s: %v", path, werr)
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		doc, err := c.loadDocument(path)
		if err != nil {
			logger.Debug("local: skip %s: %v", path, err)
			return nil
		}
		if doc != nil {
			docs[doc.relPath] = doc
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("local: scan %s: %w", c.root, err)
	}

	c.mu.Lock()
	c.docs = docs
	c.mu.Unlock()

	logger.Debug("local: indexed %d documents under %s", len(docs), c.root)
	return nil
}

// loadDocument reads one file into the index. Binary and oversized
// files return nil without error.
func (c *Channel) loadDocument(path string) (*document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxFileSize {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.ContainsRune(raw, 0) {
		return nil, nil
	}

	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		return nil, err
	}
	rel = filepath.ToSlash(rel)

	content := string(raw)
	return &document{
		id:         rel,
		name:       filepath.Base(path),
		relPath:    rel,
		absPath:    path,
		content:    content,
		searchText: searchText(path, content),
	}, nil
}

// watch applies filesystem events to the index until Close.
func (c *Channel) watch() {
	for {
		select {
		case <-c.done:
			return
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			c.handleEvent(event)
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("local: watcher: %v", err)
		}
	}
}

func (c *Channel) handleEvent(event fsnotify.Event) {
	switch {
	case event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			// New subtree: rescan picks up its files and watches it.
			if err := c.scan(); err != nil {
				logger.Warn("local: rescan: %v", err)
			}
			return
		}
		if strings.HasPrefix(filepath.Base(event.Name), ".") {
			return
		}
		doc, err := c.loadDocument(event.Name)
		if err != nil || doc == nil {
			return
		}
		c.mu.Lock()
		c.docs[doc.relPath] = doc
		c.mu.Unlock()

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		rel, err := filepath.Rel(c.root, event.Name)
		if err != nil {
			return
		}
		rel = filepath.ToSlash(rel)
		c.mu.Lock()
		delete(c.docs, rel)
		c.mu.Unlock()
	}
}

// --- SearchChannel implementation ---

// Name identifies the channel.
func (c *Channel) Name() domain.Channel {
	return domain.ChannelLocal
}

// Search scores documents by query term frequency and returns the best
// matching snippet of each.
func (c *Channel) Search(ctx context.Context, query string, limit int) (domain.RankedList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	terms := tokenise(query)
	if len(terms) == 0 {
		return nil, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	type scored struct {
		doc     *document
		score   float64
		line    int
		snippet string
	}
	var matches []scored

	for _, doc := range c.docs {
		score, line := scoreDocument(doc.searchText, terms)
		if score == 0 {
			continue
		}
		matches = append(matches, scored{
			doc:     doc,
			score:   score,
			line:    line,
			snippet: snippetAround(doc.searchText, line),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].doc.relPath < matches[j].doc.relPath
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	hits := make(domain.RankedList, 0, len(matches))
	for _, m := range matches {
		hits = append(hits, domain.SearchHit{
			ChunkID:  fmt.Sprintf("%s#%d", m.doc.id, m.line),
			FileID:   m.doc.id,
			FileName: m.doc.name,
			Path:     m.doc.relPath,
			Snippet:  m.snippet,
			Score:    m.score,
			Channel:  domain.ChannelLocal,
		})
	}
	return hits, nil
}

// tokenise lowercases and splits a query into terms.
func tokenise(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 1 {
			terms = append(terms, f)
		}
	}
	return terms
}

// scoreDocument sums term frequencies and finds the line where the
// most query terms co-occur.
func scoreDocument(content string, terms []string) (float64, int) {
	lower := strings.ToLower(content)

	var score float64
	for _, term := range terms {
		score += float64(strings.Count(lower, term))
	}
	if score == 0 {
		return 0, 0
	}

	bestLine, bestCount := 0, 0
	for i, line := range strings.Split(lower, "\n") {
		count := 0
		for _, term := range terms {
			if strings.Contains(line, term) {
				count++
			}
		}
		if count > bestCount {
			bestLine, bestCount = i, count
		}
	}
	return score, bestLine
}

// snippetAround returns a few lines of context centred on the match.
func snippetAround(content string, line int) string {
	lines := strings.Split(content, "\n")
	start := line - snippetLines/2
	if start < 0 {
		start = 0
	}
	end := start + snippetLines
	if end > len(lines) {
		end = len(lines)
	}
	return strings.TrimSpace(strings.Join(lines[start:end], "\n"))
}

// --- FileStore implementation ---

// Channel identifies the channel this store belongs to.
func (c *Channel) Channel() domain.Channel {
	return domain.ChannelLocal
}

// ListFiles returns all indexed files.
func (c *Channel) ListFiles(ctx context.Context) ([]domain.FileRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	files := make([]domain.FileRef, 0, len(c.docs))
	for _, doc := range c.docs {
		files = append(files, domain.FileRef{
			ID:      doc.id,
			Name:    doc.name,
			Path:    doc.relPath,
			Channel: domain.ChannelLocal,
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// GetContent returns the indexed content of a file.
func (c *Channel) GetContent(ctx context.Context, ref domain.FileRef) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.mu.RLock()
	doc, ok := c.docs[ref.ID]
	c.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("local: %s: %w", ref.ID, domain.ErrNotFound)
	}
	return doc.content, nil
}

// UpdateContent writes the file to disk and refreshes the index entry
// immediately rather than waiting for the watcher.
func (c *Channel) UpdateContent(ctx context.Context, ref domain.FileRef, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.RLock()
	doc, ok := c.docs[ref.ID]
	c.mu.RUnlock()
	if !ok {
		return fmt.Errorf("local: %s: %w", ref.ID, domain.ErrNotFound)
	}

	if err := os.WriteFile(doc.absPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("local: write %s: %w", doc.relPath, err)
	}

	c.mu.Lock()
	c.docs[ref.ID] = &document{
		id:         doc.id,
		name:       doc.name,
		relPath:    doc.relPath,
		absPath:    doc.absPath,
		content:    content,
		searchText: searchText(doc.absPath, content),
	}
	c.mu.Unlock()
	return nil
}

// ReadOnly reports that local files accept updates.
func (c *Channel) ReadOnly() bool {
	return false
}

// Close stops the watcher.
func (c *Channel) Close() error {
	close(c.done)
	return c.watcher.Close()
}
