package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
	"github.com/mnemo-lab/mnemosyne/pkg/utils/textmatch"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// memoryDoc is the Firestore document representation of model.Memory.
// Embedding is stored as firestore.Vector32 for FindNearest vector search.
type memoryDoc struct {
	ID        types.MemoryID     `firestore:"id"`
	ProjectID types.ProjectID    `firestore:"project_id"`
	Text      string             `firestore:"text"`
	Embedding firestore.Vector32 `firestore:"embedding"`
	Tags      []string           `firestore:"tags"`
	Category  string             `firestore:"category"`
	Source    string             `firestore:"source"`
	CreatedAt time.Time          `firestore:"created_at"`
	Seq       int64              `firestore:"seq"`

	// VectorDistance is populated by FindNearest via DistanceResultField;
	// it is never written.
	VectorDistance float64 `firestore:"vector_distance,omitempty"`
}

func toMemoryDoc(m *model.Memory) *memoryDoc {
	return &memoryDoc{
		ID:        m.ID,
		ProjectID: m.ProjectID,
		Text:      m.Text,
		Embedding: firestore.Vector32(m.Embedding),
		Tags:      m.Tags,
		Category:  m.Category.String(),
		Source:    string(m.Source),
		CreatedAt: m.CreatedAt,
		Seq:       m.Seq,
	}
}

func fromMemoryDoc(d *memoryDoc) *model.Memory {
	m := &model.Memory{
		ID:        d.ID,
		ProjectID: d.ProjectID,
		Text:      d.Text,
		Tags:      d.Tags,
		Category:  types.Category(d.Category),
		Source:    types.Source(d.Source),
		CreatedAt: d.CreatedAt,
		Seq:       d.Seq,
	}
	if len(d.Embedding) > 0 {
		m.Embedding = []float32(d.Embedding)
	}
	return m
}

type memoryRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newMemoryRepository(client *firestore.Client) *memoryRepository {
	return &memoryRepository{client: client}
}

// memoriesCollection returns the subcollection path:
// projects/{projectID}/memories
func (r *memoryRepository) memoriesCollection(projectID types.ProjectID) *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "projects").Doc(string(projectID)).
		Collection("memories")
}

func (r *memoryRepository) Create(ctx context.Context, projectID types.ProjectID, mem *model.Memory) (*model.Memory, error) {
	if len(mem.Embedding) == 0 {
		return nil, goerr.New("memory embedding is required")
	}
	if len(mem.Embedding) != model.EmbeddingDimension {
		return nil, goerr.New("memory embedding dimension mismatch",
			goerr.V("got", len(mem.Embedding)),
			goerr.V("want", model.EmbeddingDimension))
	}

	created := *mem
	if created.ID == "" {
		created.ID = types.NewMemoryID()
	}
	created.ProjectID = projectID
	created.CreatedAt = time.Now().UTC()
	created.Seq = created.CreatedAt.UnixNano()
	created.Category = created.Category.OrDefault()

	docRef := r.memoriesCollection(projectID).Doc(string(created.ID))
	if _, err := docRef.Set(ctx, toMemoryDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create memory")
	}

	return &created, nil
}

func (r *memoryRepository) Get(ctx context.Context, projectID types.ProjectID, memoryID types.MemoryID) (*model.Memory, error) {
	docRef := r.memoriesCollection(projectID).Doc(string(memoryID))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "memory not found", goerr.V("memoryID", memoryID))
		}
		return nil, goerr.Wrap(err, "failed to get memory", goerr.V("memoryID", memoryID))
	}

	var d memoryDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal memory", goerr.V("memoryID", memoryID))
	}

	return fromMemoryDoc(&d), nil
}

func (r *memoryRepository) Delete(ctx context.Context, projectID types.ProjectID, memoryID types.MemoryID) error {
	docRef := r.memoriesCollection(projectID).Doc(string(memoryID))

	_, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "memory not found", goerr.V("memoryID", memoryID))
		}
		return goerr.Wrap(err, "failed to get memory", goerr.V("memoryID", memoryID))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete memory", goerr.V("memoryID", memoryID))
	}

	return nil
}

func (r *memoryRepository) List(ctx context.Context, projectID types.ProjectID) ([]*model.Memory, error) {
	iter := r.memoriesCollection(projectID).
		OrderBy("created_at", firestore.Desc).
		OrderBy("seq", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	return collectMemories(iter)
}

func (r *memoryRepository) ListRecent(ctx context.Context, projectID types.ProjectID, limit int) ([]*model.Memory, error) {
	iter := r.memoriesCollection(projectID).
		OrderBy("created_at", firestore.Desc).
		OrderBy("seq", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	return collectMemories(iter)
}

func (r *memoryRepository) FindNearest(ctx context.Context, projectID types.ProjectID, embedding []float32, limit int) ([]*model.MemoryMatch, error) {
	vq := r.memoriesCollection(projectID).
		FindNearest("embedding", firestore.Vector32(embedding), limit, firestore.DistanceMeasureCosine,
			&firestore.FindNearestOptions{DistanceResultField: "vector_distance"})

	iter := vq.Documents(ctx)
	defer iter.Stop()

	matches := make([]*model.MemoryMatch, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memory vector search results")
		}

		var d memoryDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal memory from vector search")
		}

		matches = append(matches, &model.MemoryMatch{
			Memory:   fromMemoryDoc(&d),
			Distance: d.VectorDistance,
		})
	}

	// Firestore orders by distance only; make the order total so that
	// dedup and retrieval stay deterministic on ties.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[j].Memory.Before(matches[i].Memory)
	})

	return matches, nil
}

// SearchSimilar scores the project's memories client-side. Firestore has
// no string-similarity operator; memory sets are small (hundreds to low
// thousands per project), so a scan per query is acceptable.
func (r *memoryRepository) SearchSimilar(ctx context.Context, projectID types.ProjectID, field interfaces.MatchField, term string, threshold float64, limit int) ([]*model.Memory, error) {
	all, err := r.List(ctx, projectID)
	if err != nil {
		return nil, err
	}

	type scored struct {
		memory *model.Memory
		score  float64
	}

	var matches []scored
	for _, m := range all {
		text := m.Text
		if field == interfaces.MatchTags {
			text = m.TagText()
		}
		score := textmatch.Similarity(text, term)
		if score > threshold {
			matches = append(matches, scored{memory: m, score: score})
		}
	}

	// List already yields newest first, so a stable sort keeps recency as
	// the tie-break.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
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

func (r *memoryRepository) SearchSubstring(ctx context.Context, projectID types.ProjectID, term string) ([]*model.Memory, error) {
	all, err := r.List(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var result []*model.Memory
	for _, m := range all {
		if textmatch.ContainsFold(m.Text, term) || textmatch.ContainsFold(m.TagText(), term) {
			result = append(result, m)
		}
	}
	return result, nil
}

func collectMemories(iter *firestore.DocumentIterator) ([]*model.Memory, error) {
	memories := make([]*model.Memory, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memories")
		}

		var d memoryDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal memory")
		}

		memories = append(memories, fromMemoryDoc(&d))
	}

	return memories, nil
}
