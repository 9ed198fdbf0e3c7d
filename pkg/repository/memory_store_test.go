package repository_test

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
	"github.com/mnemo-lab/mnemosyne/pkg/repository/firestore"
	"github.com/mnemo-lab/mnemosyne/pkg/repository/memory"
)

// testEmbedding builds a unit vector pointing mostly along the given axis.
// Vectors with different axes are near-orthogonal, so cosine distances in
// tests are predictable.
func testEmbedding(axis int) []float32 {
	vec := make([]float32, model.EmbeddingDimension)
	vec[axis%model.EmbeddingDimension] = 1.0
	return vec
}

// blendEmbedding mixes two axes so the result is closer to axis a than b.
func blendEmbedding(a, b int, weight float64) []float32 {
	vec := make([]float32, model.EmbeddingDimension)
	norm := math.Sqrt(weight*weight + (1-weight)*(1-weight))
	vec[a%model.EmbeddingDimension] = float32(weight / norm)
	vec[b%model.EmbeddingDimension] = float32((1 - weight) / norm)
	return vec
}

func newTestProject(t *testing.T, repo interfaces.Repository) *model.Project {
	t.Helper()
	project, err := repo.Project().Create(context.Background(), &model.Project{
		Name:   "test-project",
		UserID: "user-1",
	})
	gt.NoError(t, err).Required()
	return project
}

func runMemoryRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns ID, timestamps and default category", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		project := newTestProject(t, repo)

		created, err := repo.Memory().Create(ctx, project.ID, &model.Memory{
			Text:      "The deploy pipeline uses blue-green rollout",
			Embedding: testEmbedding(1),
			Tags:      []string{"deploy", "pipeline"},
			Source:    types.SourceConversation,
		})
		gt.NoError(t, err).Required()

		gt.Value(t, created.ID).NotEqual(types.MemoryID(""))
		gt.Value(t, created.ProjectID).Equal(project.ID)
		gt.Value(t, created.Category).Equal(types.DefaultCategory)
		gt.Bool(t, created.CreatedAt.IsZero()).False()
		gt.Array(t, created.Tags).Length(2)
	})

	t.Run("Create rejects missing embedding", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		project := newTestProject(t, repo)

		_, err := repo.Memory().Create(ctx, project.ID, &model.Memory{
			Text: "no embedding",
		})
		gt.Value(t, err).NotNil()
	})

	t.Run("Create rejects wrong embedding dimension", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		project := newTestProject(t, repo)

		_, err := repo.Memory().Create(ctx, project.ID, &model.Memory{
			Text:      "short vector",
			Embedding: []float32{0.1, 0.2, 0.3},
		})
		gt.Value(t, err).NotNil()
	})

	t.Run("Get retrieves created memory", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		project := newTestProject(t, repo)

		created, err := repo.Memory().Create(ctx, project.ID, &model.Memory{
			Text:      "Staging credentials rotate every 30 days",
			Embedding: testEmbedding(2),
			Category:  "Security",
		})
		gt.NoError(t, err).Required()

		retrieved, err := repo.Memory().Get(ctx, project.ID, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.Text).Equal(created.Text)
		gt.Value(t, retrieved.Category).Equal(types.Category("Security"))
		gt.Array(t, retrieved.Embedding).Length(model.EmbeddingDimension)
	})

	t.Run("Get returns error for unknown memory", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		project := newTestProject(t, repo)

		_, err := repo.Memory().Get(ctx, project.ID, types.NewMemoryID())
		gt.Value(t, err).NotNil()
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("Delete removes memory", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		project := newTestProject(t, repo)

		created, err := repo.Memory().Create(ctx, project.ID, &model.Memory{
			Text:      "to be deleted",
			Embedding: testEmbedding(3),
		})
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Memory().Delete(ctx, project.ID, created.ID)).Required()

		_, err = repo.Memory().Get(ctx, project.ID, created.ID)
		gt.Value(t, err).NotNil()
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("List returns newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		project := newTestProject(t, repo)

		texts := []string{"first", "second", "third"}
		for i, text := range texts {
			_, err := repo.Memory().Create(ctx, project.ID, &model.Memory{
				Text:      text,
				Embedding: testEmbedding(i),
			})
			gt.NoError(t, err).Required()
			time.Sleep(time.Millisecond)
		}

		listed, err := repo.Memory().List(ctx, project.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, listed).Length(3).Required()
		gt.Value(t, listed[0].Text).Equal("third")
		gt.Value(t, listed[2].Text).Equal("first")
	})

	t.Run("ListRecent limits and keeps recency order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		project := newTestProject(t, repo)

		for i := 0; i < 5; i++ {
			_, err := repo.Memory().Create(ctx, project.ID, &model.Memory{
				Text:      string(rune('a' + i)),
				Embedding: testEmbedding(i),
			})
			gt.NoError(t, err).Required()
			time.Sleep(time.Millisecond)
		}

		recent, err := repo.Memory().ListRecent(ctx, project.ID, 2)
		gt.NoError(t, err).Required()
		gt.Array(t, recent).Length(2).Required()
		gt.Value(t, recent[0].Text).Equal("e")
		gt.Value(t, recent[1].Text).Equal("d")
	})

	t.Run("FindNearest orders by cosine distance", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		project := newTestProject(t, repo)

		near, err := repo.Memory().Create(ctx, project.ID, &model.Memory{
			Text:      "near",
			Embedding: blendEmbedding(0, 1, 0.9),
		})
		gt.NoError(t, err).Required()

		far, err := repo.Memory().Create(ctx, project.ID, &model.Memory{
			Text:      "far",
			Embedding: testEmbedding(1),
		})
		gt.NoError(t, err).Required()
		_ = far

		matches, err := repo.Memory().FindNearest(ctx, project.ID, testEmbedding(0), 10)
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(2).Required()
		gt.Value(t, matches[0].Memory.ID).Equal(near.ID)
		gt.Number(t, matches[1].Distance).Greater(matches[0].Distance)
	})

	t.Run("FindNearest respects limit", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		project := newTestProject(t, repo)

		for i := 0; i < 4; i++ {
			_, err := repo.Memory().Create(ctx, project.ID, &model.Memory{
				Text:      "entry",
				Embedding: blendEmbedding(0, 1, 0.5+0.1*float64(i)),
			})
			gt.NoError(t, err).Required()
		}

		matches, err := repo.Memory().FindNearest(ctx, project.ID, testEmbedding(0), 2)
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(2)
	})

	t.Run("SearchSimilar matches near-identical text", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		project := newTestProject(t, repo)

		target, err := repo.Memory().Create(ctx, project.ID, &model.Memory{
			Text:      "kubernetes cluster upgrade scheduled",
			Embedding: testEmbedding(0),
		})
		gt.NoError(t, err).Required()

		_, err = repo.Memory().Create(ctx, project.ID, &model.Memory{
			Text:      "quarterly budget review meeting",
			Embedding: testEmbedding(1),
		})
		gt.NoError(t, err).Required()

		found, err := repo.Memory().SearchSimilar(ctx, project.ID, interfaces.MatchText, "kubernetes cluster", 0.1, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, found).Length(1).Required()
		gt.Value(t, found[0].ID).Equal(target.ID)
	})

	t.Run("SearchSimilar scores tags when requested", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		project := newTestProject(t, repo)

		tagged, err := repo.Memory().Create(ctx, project.ID, &model.Memory{
			Text:      "unrelated body text",
			Embedding: testEmbedding(0),
			Tags:      []string{"database", "migration"},
		})
		gt.NoError(t, err).Required()

		found, err := repo.Memory().SearchSimilar(ctx, project.ID, interfaces.MatchTags, "database", 0.1, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, found).Length(1).Required()
		gt.Value(t, found[0].ID).Equal(tagged.ID)
	})

	t.Run("SearchSubstring ignores case and diacritics", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		project := newTestProject(t, repo)

		target, err := repo.Memory().Create(ctx, project.ID, &model.Memory{
			Text:      "Bütçe onayı bekleniyor",
			Embedding: testEmbedding(0),
		})
		gt.NoError(t, err).Required()

		found, err := repo.Memory().SearchSubstring(ctx, project.ID, "butce")
		gt.NoError(t, err).Required()
		gt.Array(t, found).Length(1).Required()
		gt.Value(t, found[0].ID).Equal(target.ID)
	})

	t.Run("SearchSubstring matches tags", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		project := newTestProject(t, repo)

		target, err := repo.Memory().Create(ctx, project.ID, &model.Memory{
			Text:      "weekly sync notes",
			Embedding: testEmbedding(0),
			Tags:      []string{"Güvenlik"},
		})
		gt.NoError(t, err).Required()

		found, err := repo.Memory().SearchSubstring(ctx, project.ID, "guvenlik")
		gt.NoError(t, err).Required()
		gt.Array(t, found).Length(1).Required()
		gt.Value(t, found[0].ID).Equal(target.ID)
	})

	t.Run("Memories are isolated per project", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		project1 := newTestProject(t, repo)
		project2 := newTestProject(t, repo)

		_, err := repo.Memory().Create(ctx, project1.ID, &model.Memory{
			Text:      "only in project1",
			Embedding: testEmbedding(0),
		})
		gt.NoError(t, err).Required()

		listed, err := repo.Memory().List(ctx, project2.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, listed).Length(0)
	})
}

func TestMemoryRepository_Memory(t *testing.T) {
	runMemoryRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestMemoryRepository_Firestore(t *testing.T) {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	runMemoryRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		repo, err := firestore.New(context.Background(), projectID, os.Getenv("TEST_FIRESTORE_DATABASE_ID"),
			firestore.WithCollectionPrefix("test-"+time.Now().Format("20060102150405")+"-"))
		gt.NoError(t, err).Required()
		return repo
	})
}
