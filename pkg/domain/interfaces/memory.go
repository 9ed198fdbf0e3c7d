package interfaces

import (
	"context"

	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
)

// MatchField selects which text field lexical queries score against.
type MatchField string

const (
	// MatchText scores against the memory text
	MatchText MatchField = "text"
	// MatchTags scores against the serialized tag list
	MatchTags MatchField = "tags"
)

// MemoryRepository defines the query primitives of the memory store. All
// operations are scoped to one project. Creation is atomic: a memory is
// either fully persisted with its embedding or not observable at all.
type MemoryRepository interface {
	// Create persists a new memory entry
	Create(ctx context.Context, projectID types.ProjectID, memory *model.Memory) (*model.Memory, error)

	// Get retrieves a memory entry by ID
	Get(ctx context.Context, projectID types.ProjectID, memoryID types.MemoryID) (*model.Memory, error)

	// Delete deletes a memory entry by ID
	Delete(ctx context.Context, projectID types.ProjectID, memoryID types.MemoryID) error

	// List retrieves all memories of a project, CreatedAt descending with
	// insertion-order tie-break
	List(ctx context.Context, projectID types.ProjectID) ([]*model.Memory, error)

	// ListRecent retrieves up to limit most recent memories
	ListRecent(ctx context.Context, projectID types.ProjectID, limit int) ([]*model.Memory, error)

	// FindNearest performs vector similarity search under cosine distance.
	// Results are ordered by ascending distance; ties are broken by
	// CreatedAt descending so the order is total and stable.
	FindNearest(ctx context.Context, projectID types.ProjectID, embedding []float32, limit int) ([]*model.MemoryMatch, error)

	// SearchSimilar scores a term against the given field using trigram
	// similarity and returns up to limit memories scoring above threshold,
	// best score first.
	SearchSimilar(ctx context.Context, projectID types.ProjectID, field MatchField, term string, threshold float64, limit int) ([]*model.Memory, error)

	// SearchSubstring returns memories whose text or serialized tags
	// contain the term, ignoring case and diacritics, newest first.
	SearchSubstring(ctx context.Context, projectID types.ProjectID, term string) ([]*model.Memory, error)
}
