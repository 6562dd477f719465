package domain

// Intent is the classified purpose of a user message.
type Intent string

const (
	// IntentChitChat is conversational small talk needing no retrieval.
	IntentChitChat Intent = "CHIT_CHAT"

	// IntentQueryDocuments is a question answerable from indexed documents.
	IntentQueryDocuments Intent = "QUERY_DOCUMENTS"

	// IntentGenerateCode is a request to propose a file edit.
	IntentGenerateCode Intent = "GENERATE_CODE"
)

// IsValid returns true if the intent is recognised.
func (i Intent) IsValid() bool {
	switch i {
	case IntentChitChat, IntentQueryDocuments, IntentGenerateCode:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (i Intent) String() string {
	return string(i)
}

// Description returns a human-readable description of the intent.
func (i Intent) Description() string {
	switch i {
	case IntentChitChat:
		return "Chit-chat (direct reply)"
	case IntentQueryDocuments:
		return "Document query (retrieve + answer)"
	case IntentGenerateCode:
		return "Code generation (propose file edit)"
	default:
		return unknownDescription
	}
}
