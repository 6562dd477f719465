package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
	"github.com/docent-labs/docent-cli/internal/core/ports/driving"
	"github.com/docent-labs/docent-cli/internal/logger"
)

// Ensure RetrievalService implements the driving search interface.
var _ driving.SearchService = (*RetrievalService)(nil)

// Decision selects the generation path after a retrieval pass.
type Decision int

const (
	// DecideAnswerWithContext generates with the fused retrieval context
	// (plus grounding tools when the chat enables them).
	DecideAnswerWithContext Decision = iota

	// DecideAnswerGrounded generates with web/maps tools only: nothing
	// was retrieved but grounding can still answer.
	DecideAnswerGrounded

	// DecideNoResults ends the turn with a "no relevant information"
	// message. A valid conversational outcome, not an error.
	DecideNoResults
)

// RetrievalPass is the outcome of one retrieval across enabled channels.
type RetrievalPass struct {
	// Hits is the fused result list, capped at FuseLimit.
	Hits []domain.FusedHit

	// Decision is the generation path to take.
	Decision Decision

	// ChannelErrors holds the channels that failed during this pass.
	// Failed channels stay disabled for the rest of the conversation.
	ChannelErrors map[domain.Channel]error
}

// RetrievalService fans a query out to the enabled search channels,
// fuses their results and decides the downstream generation path.
type RetrievalService struct {
	channels map[domain.Channel]driven.SearchChannel
	model    driven.ModelService

	// disabled tracks sticky per-conversation channel failures.
	mu       sync.Mutex
	disabled map[string]map[domain.Channel]error
}

// NewRetrievalService creates a retrieval service over the configured
// channels. The model service is optional; without it query rewriting is
// skipped and grounding decisions assume no tool support.
func NewRetrievalService(channels []driven.SearchChannel, model driven.ModelService) *RetrievalService {
	byName := make(map[domain.Channel]driven.SearchChannel, len(channels))
	for _, ch := range channels {
		if ch != nil {
			byName[ch.Name()] = ch
		}
	}
	return &RetrievalService{
		channels: byName,
		model:    model,
		disabled: make(map[string]map[domain.Channel]error),
	}
}

// Channel returns the configured search channel with the given name.
func (s *RetrievalService) Channel(name domain.Channel) (driven.SearchChannel, bool) {
	ch, ok := s.channels[name]
	return ch, ok
}

// Retrieve runs one retrieval pass for a chat turn.
//
// The cloud channel, when enabled, triggers a best-effort query rewrite
// first; rewrite failure keeps the original query. All enabled channels
// are searched concurrently and joined before fusion; one channel's
// failure never cancels the others, but it disables that channel for the
// remainder of the conversation.
func (s *RetrievalService) Retrieve(ctx context.Context, chat *domain.Chat, query string) RetrievalPass {
	logger.Section("Retrieval")
	logger.Debug("Query: %q", query)

	enabled := s.enabledChannels(chat)
	logger.Debug("Enabled channels: %d", len(enabled))

	searchQuery := query
	if _, hasCloud := enabled[domain.ChannelCloud]; hasCloud {
		searchQuery = s.rewriteQuery(ctx, query)
	}

	lists, channelErrs := s.fanOut(ctx, enabled, searchQuery)
	s.markDisabled(chat.ID, channelErrs)

	hits := FuseRankedLists(lists, FuseLimit)
	logger.Info("Fused results: %d", len(hits))

	grounding := s.groundingActive(chat)
	pass := RetrievalPass{Hits: hits, ChannelErrors: channelErrs}
	switch {
	case len(hits) > 0:
		pass.Decision = DecideAnswerWithContext
	case grounding:
		pass.Decision = DecideAnswerGrounded
	default:
		pass.Decision = DecideNoResults
	}
	return pass
}

// Search implements driving.SearchService: a direct fan-out across every
// configured channel with no conversation state.
func (s *RetrievalService) Search(ctx context.Context, query string, limit int) ([]domain.FusedHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.FusedHit{}, nil
	}
	if limit <= 0 {
		limit = FuseLimit
	}

	all := make(map[domain.Channel]driven.SearchChannel, len(s.channels))
	for name, ch := range s.channels {
		all[name] = ch
	}
	lists, _ := s.fanOut(ctx, all, query)
	return FuseRankedLists(lists, limit), nil
}

// CloudSearch runs a cloud-only retrieval, used by the code-suggestion
// workflow. No fusion is involved for a single channel.
func (s *RetrievalService) CloudSearch(ctx context.Context, query string, limit int) (domain.RankedList, error) {
	cloud, ok := s.channels[domain.ChannelCloud]
	if !ok {
		return nil, domain.ErrCloudRequired
	}
	return cloud.Search(ctx, query, limit)
}

// DisabledChannels returns the channels sticky-disabled for the chat.
func (s *RetrievalService) DisabledChannels(chatID string) map[domain.Channel]error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[domain.Channel]error, len(s.disabled[chatID]))
	for ch, err := range s.disabled[chatID] {
		out[ch] = err
	}
	return out
}

// enabledChannels resolves the chat's channel set against the configured
// channels, minus any sticky-disabled ones.
func (s *RetrievalService) enabledChannels(chat *domain.Chat) map[domain.Channel]driven.SearchChannel {
	s.mu.Lock()
	down := s.disabled[chat.ID]
	s.mu.Unlock()

	enabled := make(map[domain.Channel]driven.SearchChannel)
	for _, name := range chat.Channels {
		ch, configured := s.channels[name]
		if !configured {
			continue
		}
		if _, isDown := down[name]; isDown {
			logger.Debug("Channel %s disabled earlier this conversation, skipping", name)
			continue
		}
		enabled[name] = ch
	}
	return enabled
}

// rewriteQuery asks the model for a search-optimised form of the query.
// Rewriting is an optimisation, never a hard dependency: any failure
// keeps the original query.
func (s *RetrievalService) rewriteQuery(ctx context.Context, query string) string {
	if s.model == nil {
		return query
	}
	rewritten, err := s.model.RewriteQuery(ctx, query)
	if err != nil {
		logger.Warn("Query rewrite failed: %v (using original query)", err)
		return query
	}
	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return query
	}
	logger.Info("Query rewritten: %q", rewritten)
	return rewritten
}

// fanOut searches every given channel concurrently and joins the results.
// Each call is independently guarded; failures land in the error map.
func (s *RetrievalService) fanOut(
	ctx context.Context,
	channels map[domain.Channel]driven.SearchChannel,
	query string,
) ([]domain.RankedList, map[domain.Channel]error) {
	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		lists []domain.RankedList
		errs  = make(map[domain.Channel]error)
	)

	// Fixed fan-out order keeps fusion tie-breaks deterministic.
	for _, name := range []domain.Channel{domain.ChannelCloud, domain.ChannelLocal, domain.ChannelDrive, domain.ChannelGitHub} {
		ch, ok := channels[name]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(name domain.Channel, ch driven.SearchChannel) {
			defer wg.Done()
			list, err := ch.Search(ctx, query, FuseLimit)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("Channel %s failed: %v", name, err)
				errs[name] = err
				return
			}
			logger.Debug("Channel %s: %d hits", name, len(list))
			lists = append(lists, list)
		}(name, ch)
	}
	wg.Wait()

	// Re-impose channel order on the joined lists; goroutine completion
	// order is not deterministic.
	sort.SliceStable(lists, func(i, j int) bool {
		return channelOrder(lists[i]) < channelOrder(lists[j])
	})
	return lists, errs
}

// channelOrder ranks a list by its originating channel for stable fusion
// tie-breaking. Empty lists sort last; they contribute nothing anyway.
func channelOrder(list domain.RankedList) int {
	if len(list) == 0 {
		return 4
	}
	switch list[0].Channel {
	case domain.ChannelCloud:
		return 0
	case domain.ChannelLocal:
		return 1
	case domain.ChannelDrive:
		return 2
	case domain.ChannelGitHub:
		return 3
	default:
		return 4
	}
}

// markDisabled records failed channels as unavailable for the rest of
// the conversation.
func (s *RetrievalService) markDisabled(chatID string, errs map[domain.Channel]error) {
	if len(errs) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disabled[chatID] == nil {
		s.disabled[chatID] = make(map[domain.Channel]error)
	}
	for ch, err := range errs {
		s.disabled[chatID][ch] = err
	}
}

// groundingActive reports whether this chat can use grounded generation:
// a grounding option is on and the model provider has the tools.
func (s *RetrievalService) groundingActive(chat *domain.Chat) bool {
	if !chat.Grounding.Any() {
		return false
	}
	if s.model == nil || !s.model.SupportsGrounding() {
		logger.Debug("Grounding requested but unsupported by model provider")
		return false
	}
	return true
}
