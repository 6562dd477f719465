package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
)

func newTestChat(channels ...domain.Channel) *domain.Chat {
	return &domain.Chat{ID: "chat-1", Channels: channels}
}

func TestRetrieve_FusesEnabledChannels(t *testing.T) {
	cloud := &mockChannel{name: domain.ChannelCloud, hits: domain.RankedList{
		channelHit("a", "policy.md", domain.ChannelCloud),
		channelHit("b", "faq.md", domain.ChannelCloud),
	}}
	local := &mockChannel{name: domain.ChannelLocal, hits: domain.RankedList{
		channelHit("b", "faq.md", domain.ChannelLocal),
		channelHit("c", "notes.txt", domain.ChannelLocal),
	}}
	svc := NewRetrievalService([]driven.SearchChannel{cloud, local}, &mockModel{rewritten: "refund policy"})

	pass := svc.Retrieve(context.Background(), newTestChat(domain.ChannelCloud, domain.ChannelLocal), "what is the refund policy")

	assert.Equal(t, DecideAnswerWithContext, pass.Decision)
	require.NotEmpty(t, pass.Hits)
	// "b" appears in both channels and must rank first.
	assert.Equal(t, "b", pass.Hits[0].ChunkID)
	assert.Empty(t, pass.ChannelErrors)
	assert.Equal(t, 1, cloud.calls)
	assert.Equal(t, 1, local.calls)
}

func TestRetrieve_ChannelFailureIsStickyAndIsolated(t *testing.T) {
	cloud := &mockChannel{name: domain.ChannelCloud, searchErr: errors.New("503")}
	local := &mockChannel{name: domain.ChannelLocal, hits: domain.RankedList{
		channelHit("c", "notes.txt", domain.ChannelLocal),
	}}
	svc := NewRetrievalService([]driven.SearchChannel{cloud, local}, nil)
	chat := newTestChat(domain.ChannelCloud, domain.ChannelLocal)

	pass := svc.Retrieve(context.Background(), chat, "query")

	// The healthy channel's results survive the sibling failure.
	require.Len(t, pass.Hits, 1)
	assert.Equal(t, "c", pass.Hits[0].ChunkID)
	require.Contains(t, pass.ChannelErrors, domain.ChannelCloud)

	// The failed channel stays disabled for the conversation.
	pass = svc.Retrieve(context.Background(), chat, "query again")
	assert.Equal(t, 1, cloud.calls)
	assert.Equal(t, 2, local.calls)
	assert.Empty(t, pass.ChannelErrors)

	down := svc.DisabledChannels(chat.ID)
	assert.Contains(t, down, domain.ChannelCloud)
}

func TestRetrieve_RewriteFailureKeepsOriginalQuery(t *testing.T) {
	var gotQuery string
	cloud := &recordingChannel{name: domain.ChannelCloud, record: &gotQuery}
	model := &mockModel{rewriteErr: errors.New("rewrite down")}
	svc := NewRetrievalService([]driven.SearchChannel{cloud}, model)

	svc.Retrieve(context.Background(), newTestChat(domain.ChannelCloud), "original words")

	assert.Equal(t, "original words", gotQuery)
}

func TestRetrieve_RewriteAppliesToSearch(t *testing.T) {
	var gotQuery string
	cloud := &recordingChannel{name: domain.ChannelCloud, record: &gotQuery}
	model := &mockModel{rewritten: "optimised query"}
	svc := NewRetrievalService([]driven.SearchChannel{cloud}, model)

	svc.Retrieve(context.Background(), newTestChat(domain.ChannelCloud), "original words")

	assert.Equal(t, "optimised query", gotQuery)
}

func TestRetrieve_NoRewriteWithoutCloud(t *testing.T) {
	var gotQuery string
	local := &recordingChannel{name: domain.ChannelLocal, record: &gotQuery}
	model := &mockModel{rewritten: "should not be used"}
	svc := NewRetrievalService([]driven.SearchChannel{local}, model)

	svc.Retrieve(context.Background(), newTestChat(domain.ChannelLocal), "original words")

	assert.Equal(t, "original words", gotQuery)
}

func TestRetrieve_EmptyWithGroundingFallsBackToGrounded(t *testing.T) {
	cloud := &mockChannel{name: domain.ChannelCloud}
	model := &mockModel{grounding: true}
	svc := NewRetrievalService([]driven.SearchChannel{cloud}, model)
	chat := newTestChat(domain.ChannelCloud)
	chat.Grounding = domain.GroundingOptions{WebSearch: true}

	pass := svc.Retrieve(context.Background(), chat, "anything")

	assert.Empty(t, pass.Hits)
	assert.Equal(t, DecideAnswerGrounded, pass.Decision)
}

func TestRetrieve_EmptyWithoutGroundingIsNoResults(t *testing.T) {
	cloud := &mockChannel{name: domain.ChannelCloud}
	svc := NewRetrievalService([]driven.SearchChannel{cloud}, &mockModel{})

	pass := svc.Retrieve(context.Background(), newTestChat(domain.ChannelCloud), "anything")

	assert.Equal(t, DecideNoResults, pass.Decision)
}

func TestRetrieve_GroundingUnsupportedByProvider(t *testing.T) {
	cloud := &mockChannel{name: domain.ChannelCloud}
	model := &mockModel{grounding: false}
	svc := NewRetrievalService([]driven.SearchChannel{cloud}, model)
	chat := newTestChat(domain.ChannelCloud)
	chat.Grounding = domain.GroundingOptions{Maps: true}

	pass := svc.Retrieve(context.Background(), chat, "anything")

	// Without provider tools the grounding flags cannot rescue the turn.
	assert.Equal(t, DecideNoResults, pass.Decision)
}

func TestSearch_Direct(t *testing.T) {
	cloud := &mockChannel{name: domain.ChannelCloud, hits: domain.RankedList{
		channelHit("a", "policy.md", domain.ChannelCloud),
	}}
	svc := NewRetrievalService([]driven.SearchChannel{cloud}, nil)

	hits, err := svc.Search(context.Background(), "refunds", 5)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	hits, err = svc.Search(context.Background(), "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestCloudSearch_RequiresCloudChannel(t *testing.T) {
	svc := NewRetrievalService(nil, nil)

	_, err := svc.CloudSearch(context.Background(), "q", 10)

	assert.ErrorIs(t, err, domain.ErrCloudRequired)
}

// recordingChannel captures the query it was searched with.
type recordingChannel struct {
	name   domain.Channel
	record *string
}

func (r *recordingChannel) Name() domain.Channel { return r.name }

func (r *recordingChannel) Search(_ context.Context, query string, _ int) (domain.RankedList, error) {
	*r.record = query
	return nil, nil
}

func (r *recordingChannel) Close() error { return nil }
