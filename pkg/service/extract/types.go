package extract

import (
	"context"

	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
)

// Service defines the interface for fact extraction from conversation text
type Service interface {
	// Extract analyzes a conversation and returns the durable facts it
	// contains. An empty slice means the conversation held nothing worth
	// remembering; that is not an error.
	Extract(ctx context.Context, input Input) ([]Candidate, error)
}

// Input represents a conversation turn to analyze
type Input struct {
	// Conversation is the raw exchange, typically formatted as
	// "User: ...\n\nAI: ...".
	Conversation string

	// Context is the rendered prior-memory block for this project. It is
	// passed to the extractor as read-only background so already known
	// facts are not re-extracted. Optional.
	Context string
}

// Candidate is one extracted fact, not yet persisted
type Candidate struct {
	Text     string         `json:"text"`
	Tags     []string       `json:"tags"`
	Category types.Category `json:"category"`
}
