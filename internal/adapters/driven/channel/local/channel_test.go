package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
)

func newTestChannel(t *testing.T, files map[string]string) *Channel {
	t.Helper()
	root := t.TempDir()
	for path, content := range files {
		full := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	ch, err := NewChannel(root)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ch.Close() })
	return ch
}

func TestNewChannel_RequiresDirectory(t *testing.T) {
	_, err := NewChannel("/nonexistent/path")
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = NewChannel(file)
	require.Error(t, err)
}

func TestChannel_ImplementsInterfaces(t *testing.T) {
	var _ driven.SearchChannel = (*Channel)(nil)
	var _ driven.FileStore = (*Channel)(nil)
}

func TestChannel_Identity(t *testing.T) {
	ch := newTestChannel(t, nil)

	assert.Equal(t, domain.ChannelLocal, ch.Name())
	assert.Equal(t, domain.ChannelLocal, ch.Channel())
	assert.False(t, ch.ReadOnly())
}

func TestSearch_RanksByTermFrequency(t *testing.T) {
	ch := newTestChannel(t, map[string]string{
		"policy.md": "Refund policy.\nRefunds are issued within 30 days.\nContact support for refund status.",
		"faq.md":    "General questions.\nOne refund mention here.",
		"other.md":  "Nothing relevant at all.",
	})

	hits, err := ch.Search(context.Background(), "refund", 10)

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "policy.md", hits[0].Path)
	assert.Equal(t, "faq.md", hits[1].Path)
	assert.Greater(t, hits[0].Score, hits[1].Score)
	assert.Equal(t, domain.ChannelLocal, hits[0].Channel)
	assert.Contains(t, hits[0].Snippet, "Refund")
}

func TestSearch_RespectsLimit(t *testing.T) {
	ch := newTestChannel(t, map[string]string{
		"a.md": "widget",
		"b.md": "widget",
		"c.md": "widget",
	})

	hits, err := ch.Search(context.Background(), "widget", 2)

	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearch_SnippetsAreMarkupFree(t *testing.T) {
	ch := newTestChannel(t, map[string]string{
		"guide.md": "# Refund guide\n\nSee [refund policy](https://example.com) for **refund** rules.",
	})

	hits, err := ch.Search(context.Background(), "refund", 10)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Contains(t, hits[0].Snippet, "refund policy")
	assert.NotContains(t, hits[0].Snippet, "**")
	assert.NotContains(t, hits[0].Snippet, "](")
}

func TestSearch_EmptyQuery(t *testing.T) {
	ch := newTestChannel(t, map[string]string{"a.md": "content"})

	hits, err := ch.Search(context.Background(), "  ", 10)

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestScan_SkipsHiddenAndBinary(t *testing.T) {
	ch := newTestChannel(t, map[string]string{
		"visible.md":      "searchable text",
		".hidden.md":      "searchable text",
		".git/config.txt": "searchable text",
		"blob.bin":        "search\x00able",
	})

	files, err := ch.ListFiles(context.Background())

	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "visible.md", files[0].Path)
}

func TestListFiles_SortedByPath(t *testing.T) {
	ch := newTestChannel(t, map[string]string{
		"b/second.md": "b",
		"a/first.md":  "a",
	})

	files, err := ch.ListFiles(context.Background())

	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a/first.md", files[0].Path)
	assert.Equal(t, "b/second.md", files[1].Path)
}

func TestGetContent(t *testing.T) {
	ch := newTestChannel(t, map[string]string{"notes.md": "hello"})

	content, err := ch.GetContent(context.Background(), domain.FileRef{ID: "notes.md"})

	require.NoError(t, err)
	assert.Equal(t, "hello", content)

	_, err = ch.GetContent(context.Background(), domain.FileRef{ID: "missing.md"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateContent_WritesDiskAndIndex(t *testing.T) {
	ch := newTestChannel(t, map[string]string{"app.py": "print('old')"})

	err := ch.UpdateContent(context.Background(), domain.FileRef{ID: "app.py"}, "print('new')")
	require.NoError(t, err)

	content, err := ch.GetContent(context.Background(), domain.FileRef{ID: "app.py"})
	require.NoError(t, err)
	assert.Equal(t, "print('new')", content)

	raw, err := os.ReadFile(filepath.Join(ch.root, "app.py"))
	require.NoError(t, err)
	assert.Equal(t, "print('new')", string(raw))
}

func TestUpdateContent_UnknownFile(t *testing.T) {
	ch := newTestChannel(t, nil)

	err := ch.UpdateContent(context.Background(), domain.FileRef{ID: "nope.md"}, "x")

	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWatch_IndexesNewFiles(t *testing.T) {
	ch := newTestChannel(t, map[string]string{"existing.md": "old text"})

	require.NoError(t, os.WriteFile(filepath.Join(ch.root, "added.md"), []byte("fresh text"), 0o644))

	require.Eventually(t, func() bool {
		files, err := ch.ListFiles(context.Background())
		return err == nil && len(files) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatch_DropsRemovedFiles(t *testing.T) {
	ch := newTestChannel(t, map[string]string{"doomed.md": "text"})

	require.NoError(t, os.Remove(filepath.Join(ch.root, "doomed.md")))

	require.Eventually(t, func() bool {
		files, err := ch.ListFiles(context.Background())
		return err == nil && len(files) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTokenise(t *testing.T) {
	assert.Equal(t, []string{"refund", "policy"}, tokenise("Refund, policy!"))
	assert.Empty(t, tokenise("a ? !"))
}
