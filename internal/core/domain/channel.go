package domain

// Channel identifies one independent source of search results or file content.
type Channel string

const (
	// ChannelCloud is the hosted document index. It is the only channel that
	// indexes full file contents reliably, so code suggestions require it.
	ChannelCloud Channel = "cloud"

	// ChannelLocal is the client-side document set searched in-process.
	ChannelLocal Channel = "local"

	// ChannelDrive is a linked Google Drive source (read-only).
	ChannelDrive Channel = "drive"

	// ChannelGitHub is a linked GitHub repository source (read-only).
	ChannelGitHub Channel = "github"
)

// IsValid returns true if the channel is recognised.
func (c Channel) IsValid() bool {
	switch c {
	case ChannelCloud, ChannelLocal, ChannelDrive, ChannelGitHub:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c Channel) String() string {
	return string(c)
}

// Description returns a human-readable description of the channel.
func (c Channel) Description() string {
	switch c {
	case ChannelCloud:
		return "Cloud index (hosted search)"
	case ChannelLocal:
		return "Local documents (in-process search)"
	case ChannelDrive:
		return "Google Drive (linked, read-only)"
	case ChannelGitHub:
		return "GitHub repository (linked, read-only)"
	default:
		return unknownDescription
	}
}

// SupportsUpdate returns true if file content behind this channel can be
// written back. Linked external sources are read-only.
func (c Channel) SupportsUpdate() bool {
	return c == ChannelCloud || c == ChannelLocal
}

// GroundingOptions configures live-search augmentation for generation.
// Grounding is a model-side tool, not a search channel: it produces no
// RankedList and participates in generation only.
type GroundingOptions struct {
	// WebSearch enables web-search grounding during generation.
	WebSearch bool

	// Maps enables maps grounding during generation.
	Maps bool
}

// Any returns true if at least one grounding tool is enabled.
func (g GroundingOptions) Any() bool {
	return g.WebSearch || g.Maps
}

const unknownDescription = "Unknown"
