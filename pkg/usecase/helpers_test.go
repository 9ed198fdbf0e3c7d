package usecase_test

import (
	"context"
	"hash/fnv"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
	"github.com/mnemo-lab/mnemosyne/pkg/repository/memory"
	"github.com/mnemo-lab/mnemosyne/pkg/service/extract"
	"github.com/mnemo-lab/mnemosyne/pkg/usecase"
)

const testUserID = types.UserID("user-test")

// ----- mock embedding service -----

// textEmbedding derives a deterministic unit vector from the text: equal
// texts map to the same axis (distance 0), different texts almost always
// to different axes (distance 1).
func textEmbedding(text string) []float32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	vec := make([]float32, model.EmbeddingDimension)
	vec[int(h.Sum32())%model.EmbeddingDimension] = 1.0
	return vec
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) ([]float32, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return textEmbedding(text), nil
}

func (m *mockEmbedder) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		results[i] = vec
	}
	return results, nil
}

// ----- mock extraction service -----

type mockExtractor struct {
	extractFn func(ctx context.Context, input extract.Input) ([]extract.Candidate, error)
}

func (m *mockExtractor) Extract(ctx context.Context, input extract.Input) ([]extract.Candidate, error) {
	if m.extractFn != nil {
		return m.extractFn(ctx, input)
	}
	return nil, nil
}

// ----- mock report service -----

type mockReporter struct {
	generateFn func(ctx context.Context, memories []*model.Memory) (string, error)
}

func (m *mockReporter) Generate(ctx context.Context, memories []*model.Memory) (string, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, memories)
	}
	return "# Report", nil
}

// ----- mock archive service -----

type mockArchiver struct {
	putFn func(ctx context.Context, report *model.Report) error
}

func (m *mockArchiver) Put(ctx context.Context, report *model.Report) error {
	if m.putFn != nil {
		return m.putFn(ctx, report)
	}
	return nil
}

// ----- common fixtures -----

func newTestUseCases(extractor *mockExtractor, opts ...usecase.Option) (*usecase.UseCases, interfaces.Repository) {
	return newTestUseCasesWithEmbedder(extractor, &mockEmbedder{}, opts...)
}

func newTestUseCasesWithEmbedder(extractor *mockExtractor, embedder *mockEmbedder, opts ...usecase.Option) (*usecase.UseCases, interfaces.Repository) {
	repo := memory.New()
	uc := usecase.New(repo, embedder, extractor, &mockReporter{}, opts...)
	return uc, repo
}

type harness struct {
	uc   *usecase.UseCases
	repo interfaces.Repository
}

func newRepoWithReporterTest(t *testing.T, reporter *mockReporter) *harness {
	t.Helper()
	repo := memory.New()
	uc := usecase.New(repo, &mockEmbedder{}, &mockExtractor{}, reporter)
	return &harness{uc: uc, repo: repo}
}

func newTestRepo() interfaces.Repository {
	return memory.New()
}

func createTestProject(t *testing.T, uc *usecase.UseCases) *model.Project {
	t.Helper()
	project, err := uc.CreateProject(context.Background(), testUserID, "test-project")
	gt.NoError(t, err).Required()
	return project
}

func seedMemory(t *testing.T, repo interfaces.Repository, projectID types.ProjectID, text string, tags []string) *model.Memory {
	t.Helper()
	saved, err := repo.Memory().Create(context.Background(), projectID, &model.Memory{
		Text:      text,
		Embedding: textEmbedding(text),
		Tags:      tags,
		Source:    types.SourceConversation,
	})
	gt.NoError(t, err).Required()
	return saved
}
