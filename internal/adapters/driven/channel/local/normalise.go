package local

import (
	"html"
	"path/filepath"
	"regexp"
	"strings"
)

// Markup in indexed files inflates term counts and leaks tags into
// snippets, so markdown and HTML are reduced to plain text before
// scoring. The raw content is kept untouched for file access and edits.

var (
	mdCodeBlock  = regexp.MustCompile("(?s)```[^`]*```")
	mdInlineCode = regexp.MustCompile("`[^`]+`")
	mdImage      = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	mdLink       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	mdHeading    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdBlockquote = regexp.MustCompile(`(?m)^>\s*`)
	mdRule       = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	mdListItem   = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+\.)\s+`)

	htmlDropTag  = regexp.MustCompile(`(?is)<(script|style|noscript|head|svg)[^>]*>.*?</(script|style|noscript|head|svg)>`)
	htmlComment  = regexp.MustCompile(`(?s)<!--.*?-->`)
	htmlBlockTag = regexp.MustCompile(`(?i)</?(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>|<[bh]r\s*/?>`)
	htmlAnyTag   = regexp.MustCompile(`<[^>]+>`)

	multiBlank = regexp.MustCompile(`\n{3,}`)
)

// searchText reduces a file to the plain text the index scores. Markdown
// and HTML lose their markup; everything else is indexed as-is.
func searchText(path, content string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return stripMarkdown(content)
	case ".html", ".htm":
		return stripHTML(content)
	default:
		return content
	}
}

// stripMarkdown reduces markdown to its readable text.
func stripMarkdown(content string) string {
	content = mdCodeBlock.ReplaceAllString(content, "")
	content = mdInlineCode.ReplaceAllString(content, "")
	content = mdImage.ReplaceAllString(content, "")
	content = mdLink.ReplaceAllString(content, "$1")
	content = mdHeading.ReplaceAllString(content, "")
	content = mdRule.ReplaceAllString(content, "")
	content = mdBlockquote.ReplaceAllString(content, "")
	content = mdListItem.ReplaceAllString(content, "")

	content = strings.NewReplacer("**", "", "__", "", "*", "", "_", " ").Replace(content)

	content = multiBlank.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

// stripHTML reduces an HTML document to its readable text. Block-level
// tags become line breaks so snippets keep their shape.
func stripHTML(content string) string {
	content = htmlDropTag.ReplaceAllString(content, "")
	content = htmlComment.ReplaceAllString(content, "")
	content = htmlBlockTag.ReplaceAllString(content, "\n")
	content = htmlAnyTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
