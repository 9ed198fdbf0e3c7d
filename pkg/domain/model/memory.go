package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
)

// EmbeddingDimension is the dimension of the embedding vector.
// Gemini text-embedding-004 uses 768 dimensions.
const EmbeddingDimension = 768

// timestampLayout is the prefix format used when memories are rendered
// into extractor context and recall results.
const timestampLayout = "2006-01-02 15:04"

// Memory is one persisted factual statement with its embedding and
// metadata. Memories are immutable after creation: corrections arrive as
// new records carrying an update tag, never as in-place edits.
type Memory struct {
	ID        types.MemoryID
	ProjectID types.ProjectID
	Text      string
	Embedding []float32 // computed once at creation, never recomputed
	Tags      []string
	Category  types.Category
	Source    types.Source
	CreatedAt time.Time
	// Seq is the insertion order within the backing store. CreatedAt is the
	// primary ordering key everywhere; Seq breaks ties so that dedup and
	// context assembly stay deterministic.
	Seq int64
}

// MemoryMatch is a vector search result carrying the cosine distance
// (lower = more similar) of the matched memory to the query embedding.
type MemoryMatch struct {
	Memory   *Memory
	Distance float64
}

// ContextLine renders the memory as a single timestamped line for the
// extractor context blob.
func (m *Memory) ContextLine() string {
	return fmt.Sprintf("- [%s] %s", m.CreatedAt.Format(timestampLayout), m.Text)
}

// RecallLine renders the memory as a timestamped line for recall results.
func (m *Memory) RecallLine() string {
	return fmt.Sprintf("[%s] %s", m.CreatedAt.Format(timestampLayout), m.Text)
}

// Preview returns the first maxRunes runes of the memory text, with an
// ellipsis when truncated. Used for deletion confirmations.
func (m *Memory) Preview(maxRunes int) string {
	runes := []rune(m.Text)
	if len(runes) <= maxRunes {
		return m.Text
	}
	return string(runes[:maxRunes]) + "..."
}

// TagText returns the serialized tag list used for lexical matching.
func (m *Memory) TagText() string {
	return strings.Join(m.Tags, ", ")
}

// Before reports whether m was created before other, breaking CreatedAt
// ties by insertion order.
func (m *Memory) Before(other *Memory) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.Seq < other.Seq
}
