package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docent-labs/docent-cli/internal/core/domain"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_StreamsAnswer(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := &mockAssistant{reply: &domain.Message{
		ID: "m1", Role: domain.RoleModel, Content: "streamed answer text",
	}}
	assistantService = mock

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "what is the retry policy?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "streamed answer text")
	assert.Equal(t, "what is the retry policy?", mock.gotText)
}

func TestAskCmd_PrintsSources(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	assistantService = &mockAssistant{reply: &domain.Message{
		ID: "m1", Role: domain.RoleModel, Content: "grounded answer",
		Context: []domain.FusedHit{
			{
				SearchHit:  domain.SearchHit{Path: "docs/retry.md", Channel: domain.ChannelCloud},
				FusedScore: 0.0163,
			},
		},
		Citations: []domain.Citation{{URI: "https://example.com/doc", Title: "Example"}},
	}}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "question"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Sources:")
	assert.Contains(t, buf.String(), "docs/retry.md")
	assert.Contains(t, buf.String(), "Citations:")
	assert.Contains(t, buf.String(), "https://example.com/doc")
}

func TestAskCmd_PendingSuggestionHint(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	assistantService = &mockAssistant{reply: &domain.Message{
		ID: "m1", Role: domain.RoleModel, Content: "proposing an edit",
		Suggestion: &domain.CodeSuggestion{
			ID:              "s1",
			File:            domain.FileRef{Path: "src/app.py"},
			ProposedContent: "print('hi')",
			Rationale:       "fix greeting",
			Status:          domain.SuggestionPending,
		},
	}}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "fix the greeting"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "src/app.py")
	assert.Contains(t, buf.String(), "suggest accept")
}

func TestAskCmd_StreamErrorAnnotated(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	assistantService = &mockAssistant{reply: &domain.Message{
		ID: "m1", Role: domain.RoleModel, Content: "partial",
		Err: "connection reset",
	}}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "question"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "partial")
	assert.Contains(t, buf.String(), "generation ended early")
}

func TestAskCmd_NotConfigured(t *testing.T) {
	oldAssistant := assistantService
	assistantService = nil
	defer func() { assistantService = oldAssistant }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "question"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "assistant not configured")
}
