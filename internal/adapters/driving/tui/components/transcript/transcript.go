// Package transcript renders a chat conversation as a scrollable log.
package transcript

import (
	"fmt"
	"strings"

	"github.com/docent-labs/docent-cli/internal/adapters/driving/tui/styles"
	"github.com/docent-labs/docent-cli/internal/core/domain"
)

// Transcript displays the messages of a chat, wrapped to the
// viewport width, with the newest entries at the bottom.
type Transcript struct {
	styles *styles.Styles

	msgs         []domain.Message
	streaming    string
	lines        []string
	scrollOffset int
	follow       bool
	width        int
	height       int
}

// New creates a new transcript component.
func New(s *styles.Styles) *Transcript {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Transcript{
		styles: s,
		follow: true,
		width:  80,
		height: 24,
	}
}

// SetMessages replaces the transcript contents.
func (t *Transcript) SetMessages(msgs []domain.Message) {
	t.msgs = msgs
	t.streaming = ""
	t.rebuild()
	t.GotoBottom()
}

// Append adds a completed message to the end of the transcript.
func (t *Transcript) Append(msg domain.Message) {
	t.msgs = append(t.msgs, msg)
	t.streaming = ""
	t.rebuild()
	if t.follow {
		t.GotoBottom()
	}
}

// AppendDelta grows the in-flight model reply by one streamed fragment.
func (t *Transcript) AppendDelta(delta string) {
	t.streaming += delta
	t.rebuild()
	if t.follow {
		t.GotoBottom()
	}
}

// Streaming returns the accumulated in-flight reply text.
func (t *Transcript) Streaming() string {
	return t.streaming
}

// Messages returns the completed messages.
func (t *Transcript) Messages() []domain.Message {
	return t.msgs
}

// ScrollUp scrolls the transcript up by a page.
func (t *Transcript) ScrollUp() {
	t.follow = false
	t.scrollOffset -= t.visibleLines()
	if t.scrollOffset < 0 {
		t.scrollOffset = 0
	}
}

// ScrollDown scrolls the transcript down by a page.
func (t *Transcript) ScrollDown() {
	maxOffset := t.maxScrollOffset()
	t.scrollOffset += t.visibleLines()
	if t.scrollOffset >= maxOffset {
		t.scrollOffset = maxOffset
		t.follow = true
	}
}

// GotoBottom scrolls to the newest entry and resumes following.
func (t *Transcript) GotoBottom() {
	t.scrollOffset = t.maxScrollOffset()
	t.follow = true
}

// SetDimensions sets the component dimensions.
func (t *Transcript) SetDimensions(width, height int) {
	t.width = width
	t.height = height
	t.rebuild()
	if t.follow {
		t.scrollOffset = t.maxScrollOffset()
	}
}

// View renders the visible window of the transcript.
func (t *Transcript) View() string {
	if len(t.lines) == 0 {
		return t.styles.Muted.Render("(No messages yet. Ask about your documents.)")
	}

	var b strings.Builder
	visible := t.visibleLines()
	for i := t.scrollOffset; i < len(t.lines) && i < t.scrollOffset+visible; i++ {
		b.WriteString(t.lines[i])
		b.WriteString("\n")
	}

	if len(t.lines) > visible && !t.follow {
		percentage := 0
		if t.maxScrollOffset() > 0 {
			percentage = t.scrollOffset * 100 / t.maxScrollOffset()
		}
		b.WriteString(t.styles.Muted.Render(fmt.Sprintf("  [%d%%]", percentage)))
		b.WriteString("\n")
	}

	return b.String()
}

// rebuild re-renders every message into wrapped display lines.
func (t *Transcript) rebuild() {
	t.lines = t.lines[:0]

	for i := range t.msgs {
		t.renderMessage(&t.msgs[i])
	}

	if t.streaming != "" {
		t.appendLabel(domain.RoleModel)
		t.appendWrapped(t.streaming)
	}
}

// renderMessage appends one message's display lines.
func (t *Transcript) renderMessage(msg *domain.Message) {
	t.appendLabel(msg.Role)
	t.appendWrapped(msg.Content)

	if len(msg.Citations) > 0 {
		t.lines = append(t.lines, t.styles.Muted.Render("  Sources:"))
		for _, c := range msg.Citations {
			t.lines = append(t.lines, t.styles.Muted.Render("    • "+c))
		}
	}

	if msg.Suggestion != nil {
		t.renderSuggestion(msg.Suggestion)
	}

	if msg.Err != "" {
		t.lines = append(t.lines, t.styles.Error.Render("  (generation ended early: "+msg.Err+")"))
	}

	t.lines = append(t.lines, "")
}

// renderSuggestion appends the display lines for a code suggestion.
func (t *Transcript) renderSuggestion(s *domain.CodeSuggestion) {
	name := s.File.Path
	if name == "" {
		name = s.File.Name
	}
	header := fmt.Sprintf("  Suggested change to %s [%s]", name, s.Status)
	t.lines = append(t.lines, t.styles.Selected.Render(header))
	if s.Rationale != "" {
		t.appendWrapped("  " + s.Rationale)
	}
	propLines := strings.Split(s.ProposedContent, "\n")
	shown := propLines
	const previewLines = 12
	if len(shown) > previewLines {
		shown = shown[:previewLines]
	}
	for _, line := range shown {
		t.lines = append(t.lines, t.styles.Muted.Render("  │ "+line))
	}
	if len(propLines) > previewLines {
		t.lines = append(t.lines, t.styles.Muted.Render(
			fmt.Sprintf("  │ ... (%d more lines)", len(propLines)-previewLines)))
	}
}

// appendLabel appends the speaker label for a role.
func (t *Transcript) appendLabel(role domain.MessageRole) {
	switch role {
	case domain.RoleUser:
		t.lines = append(t.lines, t.styles.UserLabel.Render("You"))
	case domain.RoleModel:
		t.lines = append(t.lines, t.styles.ModelLabel.Render("Docent"))
	default:
		t.lines = append(t.lines, t.styles.SystemLabel.Render(string(role)))
	}
}

// appendWrapped wraps text to the component width and appends it.
func (t *Transcript) appendWrapped(text string) {
	contentWidth := t.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	for _, line := range strings.Split(text, "\n") {
		if len(line) <= contentWidth {
			t.lines = append(t.lines, line)
			continue
		}
		for len(line) > contentWidth {
			t.lines = append(t.lines, line[:contentWidth])
			line = line[contentWidth:]
		}
		if line != "" {
			t.lines = append(t.lines, line)
		}
	}
}

// visibleLines returns how many lines fit in the component.
func (t *Transcript) visibleLines() int {
	if t.height < 1 {
		return 1
	}
	return t.height
}

// maxScrollOffset returns the maximum scroll offset.
func (t *Transcript) maxScrollOffset() int {
	maxOffset := len(t.lines) - t.visibleLines()
	if maxOffset < 0 {
		maxOffset = 0
	}
	return maxOffset
}
