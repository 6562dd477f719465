package services

import (
	"sort"

	"github.com/docent-labs/docent-cli/internal/core/domain"
)

// rrfK is the reciprocal rank fusion constant. The standard choice of 60
// prevents top ranks from dominating the fused score.
const rrfK = 60

// FuseLimit is the cap callers apply to fused retrieval results.
const FuseLimit = 10

// FuseRankedLists merges ranked lists from independent channels into one
// list ordered by descending fused score, truncated to limit.
//
// Each hit contributes 1/(k+r) for its 1-based rank r within its source
// list. Hit identity is the chunk ID, not object identity: a hit present
// in several lists accumulates the sum of its per-list contributions.
// Duplicate identities within a single list are collapsed to their best
// rank before scoring, so a misbehaving channel cannot double-count.
// Ties break by first-seen insertion order across the lists as given,
// which keeps the output deterministic.
//
// Empty input yields an empty output, never an error.
func FuseRankedLists(lists []domain.RankedList, limit int) []domain.FusedHit {
	scores := make(map[string]float64)
	order := make(map[string]int)
	hits := make(map[string]domain.SearchHit)
	next := 0

	for _, list := range lists {
		for rank, hit := range dedupeByBestRank(list) {
			id := hit.ChunkID
			scores[id] += 1.0 / float64(rrfK+rank+1)
			if _, seen := order[id]; !seen {
				order[id] = next
				next++
				hits[id] = hit
			}
		}
	}

	fused := make([]domain.FusedHit, 0, len(scores))
	for id := range scores {
		fused = append(fused, domain.FusedHit{
			SearchHit:  hits[id],
			FusedScore: scores[id],
		})
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].FusedScore != fused[j].FusedScore {
			return fused[i].FusedScore > fused[j].FusedScore
		}
		return order[fused[i].ChunkID] < order[fused[j].ChunkID]
	})

	if limit > 0 && len(fused) > limit {
		fused = fused[:limit]
	}
	return fused
}

// dedupeByBestRank collapses repeated chunk IDs within one list, keeping
// the earliest (best-ranked) occurrence.
func dedupeByBestRank(list domain.RankedList) domain.RankedList {
	seen := make(map[string]bool, len(list))
	out := make(domain.RankedList, 0, len(list))
	for _, hit := range list {
		if seen[hit.ChunkID] {
			continue
		}
		seen[hit.ChunkID] = true
		out = append(out, hit)
	}
	return out
}
