package github

import (
	"context"
	"testing"

	gh "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
)

func TestNewChannel_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing token", cfg: Config{Owner: "o", Repo: "r"}},
		{name: "missing owner", cfg: Config{Token: "t", Repo: "r"}},
		{name: "missing repo", cfg: Config{Token: "t", Owner: "o"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChannel(context.Background(), tt.cfg)
			require.Error(t, err)
		})
	}
}

func TestChannel_ImplementsInterfaces(t *testing.T) {
	var _ driven.SearchChannel = (*Channel)(nil)
	var _ driven.FileStore = (*Channel)(nil)
}

func TestChannel_Identity(t *testing.T) {
	ch := &Channel{}

	assert.Equal(t, domain.ChannelGitHub, ch.Name())
	assert.Equal(t, domain.ChannelGitHub, ch.Channel())
	assert.True(t, ch.ReadOnly())
}

func TestUpdateContent_ReadOnly(t *testing.T) {
	ch := &Channel{}

	err := ch.UpdateContent(context.Background(), domain.FileRef{ID: "main.go"}, "content")

	require.ErrorIs(t, err, domain.ErrReadOnlyChannel)
}

func TestTextMatchSnippet(t *testing.T) {
	t.Run("joins fragments", func(t *testing.T) {
		item := &gh.CodeResult{
			Path: gh.Ptr("src/app.py"),
			TextMatches: []*gh.TextMatch{
				{Fragment: gh.Ptr("def refund():")},
				{Fragment: gh.Ptr("    return policy")},
			},
		}

		snippet := textMatchSnippet(item)

		assert.Equal(t, "def refund():\n    return policy", snippet)
	})

	t.Run("falls back to path", func(t *testing.T) {
		item := &gh.CodeResult{Path: gh.Ptr("src/app.py")}

		assert.Equal(t, "src/app.py", textMatchSnippet(item))
	})
}

func TestSearchScore(t *testing.T) {
	withScore := &gh.CodeResult{Score: gh.Ptr(7.5)}
	assert.Equal(t, 7.5, searchScore(withScore, 10, 0))

	withoutScore := &gh.CodeResult{}
	assert.Equal(t, 10.0, searchScore(withoutScore, 10, 0))
	assert.Equal(t, 7.0, searchScore(withoutScore, 10, 3))
}

func TestIsBinaryExtension(t *testing.T) {
	assert.True(t, isBinaryExtension("logo.PNG"))
	assert.True(t, isBinaryExtension("archive.tar"))
	assert.False(t, isBinaryExtension("main.go"))
	assert.False(t, isBinaryExtension("README.md"))
}
