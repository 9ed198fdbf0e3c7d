package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
	"github.com/mnemo-lab/mnemosyne/pkg/utils/textmatch"
)

type memoryStoreRepository struct {
	mu      sync.RWMutex
	seq     atomic.Int64
	entries map[types.ProjectID]map[types.MemoryID]*model.Memory
}

func newMemoryStoreRepository() *memoryStoreRepository {
	return &memoryStoreRepository{
		entries: make(map[types.ProjectID]map[types.MemoryID]*model.Memory),
	}
}

func copyMemory(m *model.Memory) *model.Memory {
	copied := &model.Memory{
		ID:        m.ID,
		ProjectID: m.ProjectID,
		Text:      m.Text,
		Category:  m.Category,
		Source:    m.Source,
		CreatedAt: m.CreatedAt,
		Seq:       m.Seq,
	}
	if m.Embedding != nil {
		copied.Embedding = make([]float32, len(m.Embedding))
		copy(copied.Embedding, m.Embedding)
	}
	if m.Tags != nil {
		copied.Tags = make([]string, len(m.Tags))
		copy(copied.Tags, m.Tags)
	}
	return copied
}

// sortByRecency orders newest first, insertion order breaking ties.
func sortByRecency(memories []*model.Memory) {
	sort.Slice(memories, func(i, j int) bool {
		return memories[j].Before(memories[i])
	})
}

func (r *memoryStoreRepository) Create(ctx context.Context, projectID types.ProjectID, mem *model.Memory) (*model.Memory, error) {
	if len(mem.Embedding) == 0 {
		return nil, goerr.New("memory embedding is required")
	}
	if len(mem.Embedding) != model.EmbeddingDimension {
		return nil, goerr.New("memory embedding dimension mismatch",
			goerr.V("got", len(mem.Embedding)),
			goerr.V("want", model.EmbeddingDimension))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[projectID]; !exists {
		r.entries[projectID] = make(map[types.MemoryID]*model.Memory)
	}

	created := copyMemory(mem)
	if created.ID == "" {
		created.ID = types.NewMemoryID()
	}
	created.ProjectID = projectID
	created.CreatedAt = time.Now().UTC()
	created.Seq = r.seq.Add(1)
	created.Category = created.Category.OrDefault()

	r.entries[projectID][created.ID] = created
	return copyMemory(created), nil
}

func (r *memoryStoreRepository) Get(ctx context.Context, projectID types.ProjectID, memoryID types.MemoryID) (*model.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket, exists := r.entries[projectID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "memory not found", goerr.V("memoryID", memoryID))
	}

	mem, exists := bucket[memoryID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "memory not found", goerr.V("memoryID", memoryID))
	}

	return copyMemory(mem), nil
}

func (r *memoryStoreRepository) Delete(ctx context.Context, projectID types.ProjectID, memoryID types.MemoryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, exists := r.entries[projectID]
	if !exists {
		return goerr.Wrap(ErrNotFound, "memory not found", goerr.V("memoryID", memoryID))
	}

	if _, exists := bucket[memoryID]; !exists {
		return goerr.Wrap(ErrNotFound, "memory not found", goerr.V("memoryID", memoryID))
	}

	delete(bucket, memoryID)
	return nil
}

func (r *memoryStoreRepository) List(ctx context.Context, projectID types.ProjectID) ([]*model.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.listLocked(projectID), nil
}

func (r *memoryStoreRepository) listLocked(projectID types.ProjectID) []*model.Memory {
	bucket, exists := r.entries[projectID]
	if !exists {
		return []*model.Memory{}
	}

	result := make([]*model.Memory, 0, len(bucket))
	for _, m := range bucket {
		result = append(result, copyMemory(m))
	}
	sortByRecency(result)
	return result
}

func (r *memoryStoreRepository) ListRecent(ctx context.Context, projectID types.ProjectID, limit int) ([]*model.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := r.listLocked(projectID)
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (r *memoryStoreRepository) FindNearest(ctx context.Context, projectID types.ProjectID, embedding []float32, limit int) ([]*model.MemoryMatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket, exists := r.entries[projectID]
	if !exists {
		return []*model.MemoryMatch{}, nil
	}

	candidates := make([]*model.MemoryMatch, 0, len(bucket))
	for _, m := range bucket {
		if len(m.Embedding) == 0 {
			continue
		}
		candidates = append(candidates, &model.MemoryMatch{
			Memory:   copyMemory(m),
			Distance: cosineDistance(embedding, m.Embedding),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Distance != candidates[j].Distance {
			return candidates[i].Distance < candidates[j].Distance
		}
		return candidates[j].Memory.Before(candidates[i].Memory)
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}
	return candidates[:limit], nil
}

func (r *memoryStoreRepository) SearchSimilar(ctx context.Context, projectID types.ProjectID, field interfaces.MatchField, term string, threshold float64, limit int) ([]*model.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		memory *model.Memory
		score  float64
	}

	var matches []scored
	for _, m := range r.entries[projectID] {
		score := textmatch.Similarity(matchField(m, field), term)
		if score > threshold {
			matches = append(matches, scored{memory: copyMemory(m), score: score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[j].memory.Before(matches[i].memory)
	})

	if limit > len(matches) {
		limit = len(matches)
	}
	result := make([]*model.Memory, limit)
	for i := 0; i < limit; i++ {
		result[i] = matches[i].memory
	}
	return result, nil
}

func (r *memoryStoreRepository) SearchSubstring(ctx context.Context, projectID types.ProjectID, term string) ([]*model.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Memory
	for _, m := range r.entries[projectID] {
		if textmatch.ContainsFold(m.Text, term) || textmatch.ContainsFold(m.TagText(), term) {
			result = append(result, copyMemory(m))
		}
	}
	sortByRecency(result)
	return result, nil
}

func (r *memoryStoreRepository) deleteByProject(projectID types.ProjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, projectID)
}

func matchField(m *model.Memory, field interfaces.MatchField) string {
	if field == interfaces.MatchTags {
		return m.TagText()
	}
	return m.Text
}

func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return 1
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 1
	}

	return 1 - dot/denom
}
