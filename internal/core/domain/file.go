package domain

import (
	"path/filepath"
	"strings"
)

// FileRef identifies a file known to a channel.
type FileRef struct {
	// ID is the channel-scoped unique identifier.
	ID string

	// Name is the file name without directories.
	Name string

	// Path is the full path within the source.
	Path string

	// Channel is the channel that knows this file.
	Channel Channel
}

// editableExtensions is the allow-list of file formats the code-suggestion
// workflow may propose edits for. Binary and media formats are excluded.
var editableExtensions = map[string]bool{
	".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".go": true, ".rs": true, ".java": true, ".c": true, ".h": true,
	".cpp": true, ".hpp": true, ".cs": true, ".rb": true, ".php": true,
	".swift": true, ".kt": true, ".scala": true, ".sh": true, ".sql": true,
	".html": true, ".css": true, ".scss": true, ".vue": true, ".svelte": true,
	".md": true, ".txt": true, ".rst": true, ".tex": true,
	".json": true, ".yaml": true, ".yml": true, ".toml": true, ".ini": true,
	".xml": true, ".csv": true, ".env": true, ".cfg": true, ".conf": true,
}

// IsEditablePath returns true if the path's extension is on the
// editable allow-list.
func IsEditablePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return editableExtensions[ext]
}
