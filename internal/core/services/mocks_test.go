package services

import (
	"context"

	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
)

// --- Mock implementations of the driven ports ---

// mockModel implements driven.ModelService for testing.
type mockModel struct {
	intent      domain.Intent
	classifyErr error

	rewritten  string
	rewriteErr error

	events      []driven.StreamEvent
	generateErr error
	lastReq     driven.GenerateRequest

	proposal   driven.EditProposal
	proposeErr error

	grounding bool

	classifyCalls int
	searchQueries []string
}

func (m *mockModel) Classify(_ context.Context, _ string) (domain.Intent, error) {
	m.classifyCalls++
	if m.classifyErr != nil {
		return "", m.classifyErr
	}
	return m.intent, nil
}

func (m *mockModel) RewriteQuery(_ context.Context, _ string) (string, error) {
	if m.rewriteErr != nil {
		return "", m.rewriteErr
	}
	return m.rewritten, nil
}

func (m *mockModel) Generate(_ context.Context, req driven.GenerateRequest) (<-chan driven.StreamEvent, error) {
	m.lastReq = req
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	events := make(chan driven.StreamEvent, len(m.events))
	for _, e := range m.events {
		events <- e
	}
	close(events)
	return events, nil
}

func (m *mockModel) ProposeEdit(_ context.Context, _ driven.EditRequest) (driven.EditProposal, error) {
	if m.proposeErr != nil {
		return driven.EditProposal{}, m.proposeErr
	}
	return m.proposal, nil
}

func (m *mockModel) SupportsGrounding() bool { return m.grounding }
func (m *mockModel) ModelName() string       { return "mock-model" }
func (m *mockModel) Ping(context.Context) error {
	return nil
}
func (m *mockModel) Close() error { return nil }

// mockChannel implements driven.SearchChannel for testing.
type mockChannel struct {
	name      domain.Channel
	hits      domain.RankedList
	searchErr error
	calls     int
}

func (m *mockChannel) Name() domain.Channel { return m.name }

func (m *mockChannel) Search(_ context.Context, query string, limit int) (domain.RankedList, error) {
	m.calls++
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if limit < len(m.hits) {
		return m.hits[:limit], nil
	}
	return m.hits, nil
}

func (m *mockChannel) Close() error { return nil }

// channelHit builds a hit owned by the given channel.
func channelHit(chunkID, path string, ch domain.Channel) domain.SearchHit {
	return domain.SearchHit{
		ChunkID:  chunkID,
		FileID:   "file-" + chunkID,
		FileName: path,
		Path:     path,
		Snippet:  "snippet for " + chunkID,
		Score:    1.0,
		Channel:  ch,
	}
}
