package domain

// SearchHit is a candidate document chunk produced by one search channel.
// Hits are immutable once produced.
type SearchHit struct {
	// ChunkID is the unique identifier of the matched chunk. Hits from
	// different channels referring to the same chunk share this ID.
	ChunkID string

	// FileID identifies the owning file.
	FileID string

	// FileName is the display name of the owning file.
	FileName string

	// Path is the file path within its source.
	Path string

	// Snippet is the matched chunk text.
	Snippet string

	// Score is the relevance score as reported by the channel.
	// Scores from different channels are not comparable.
	Score float64

	// Channel is the originating search channel.
	Channel Channel
}

// RankedList is one channel's results, ordered by descending relevance.
// Order within the list is significant; the list's position among other
// lists is not.
type RankedList []SearchHit

// FusedHit is a SearchHit annotated with its reciprocal-rank-fusion score.
type FusedHit struct {
	SearchHit

	// FusedScore is the accumulated RRF contribution across channels.
	FusedScore float64
}
