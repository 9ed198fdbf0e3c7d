package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model/config"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
	"github.com/mnemo-lab/mnemosyne/pkg/service/extract"
	"github.com/mnemo-lab/mnemosyne/pkg/usecase"
)

func TestIngest_SavesExtractedFacts(t *testing.T) {
	extractor := &mockExtractor{
		extractFn: func(ctx context.Context, input extract.Input) ([]extract.Candidate, error) {
			return []extract.Candidate{
				{Text: "PostgreSQL is the primary database", Tags: []string{"PostgreSQL"}, Category: "Infrastructure"},
				{Text: "The budget is 50000 USD", Tags: []string{"budget"}, Category: "Budget"},
			}, nil
		},
	}
	uc, _ := newTestUseCases(extractor)
	project := createTestProject(t, uc)

	result, err := uc.Ingest(context.Background(), testUserID, project.ID, "User: some conversation\n\nAI: ok")
	gt.NoError(t, err).Required()

	gt.Array(t, result.Saved).Length(2).Required()
	gt.Array(t, result.Ignored).Length(0)
	gt.Value(t, result.Saved[0].Text).Equal("PostgreSQL is the primary database")
	gt.Value(t, result.Saved[0].Category).Equal(types.Category("Infrastructure"))
}

func TestIngest_RejectsDuplicate(t *testing.T) {
	const fact = "The API uses REST over HTTPS"

	extractor := &mockExtractor{
		extractFn: func(ctx context.Context, input extract.Input) ([]extract.Candidate, error) {
			return []extract.Candidate{{Text: fact, Tags: []string{"API"}, Category: "Architecture"}}, nil
		},
	}
	uc, repo := newTestUseCases(extractor)
	project := createTestProject(t, uc)
	seedMemory(t, repo, project.ID, fact, []string{"API"})

	result, err := uc.Ingest(context.Background(), testUserID, project.ID, "User: repeat\n\nAI: ok")
	gt.NoError(t, err).Required()

	gt.Array(t, result.Saved).Length(0)
	gt.Array(t, result.Ignored).Length(1).Required()
	gt.Value(t, result.Ignored[0].Reason).Equal("Duplicate")
	gt.Number(t, result.Ignored[0].Distance).Less(0.05)
}

func TestIngest_CorrectionBypassesDedup(t *testing.T) {
	const fact = "The project deadline is March 15"

	extractor := &mockExtractor{
		extractFn: func(ctx context.Context, input extract.Input) ([]extract.Candidate, error) {
			return []extract.Candidate{{Text: fact, Tags: []string{"deadline", "update"}, Category: "Schedule"}}, nil
		},
	}
	uc, repo := newTestUseCases(extractor)
	project := createTestProject(t, uc)
	seedMemory(t, repo, project.ID, fact, []string{"deadline"})

	result, err := uc.Ingest(context.Background(), testUserID, project.ID, "User: deadline changed\n\nAI: noted")
	gt.NoError(t, err).Required()

	gt.Array(t, result.Saved).Length(1)
	gt.Array(t, result.Ignored).Length(0)
}

func TestIngest_TurkishCorrectionKeyword(t *testing.T) {
	const fact = "Bütçe 60000 TL olarak güncellendi"

	extractor := &mockExtractor{
		extractFn: func(ctx context.Context, input extract.Input) ([]extract.Candidate, error) {
			return []extract.Candidate{{Text: fact, Tags: []string{"bütçe", "düzeltme"}, Category: "Budget"}}, nil
		},
	}
	uc, repo := newTestUseCases(extractor)
	project := createTestProject(t, uc)
	seedMemory(t, repo, project.ID, fact, []string{"bütçe"})

	result, err := uc.Ingest(context.Background(), testUserID, project.ID, "User: bütçe güncellemesi\n\nAI: tamam")
	gt.NoError(t, err).Required()
	gt.Array(t, result.Saved).Length(1)
}

func TestIngest_BatchDuplicatesCaughtInOrder(t *testing.T) {
	const fact = "Redis handles session caching"

	extractor := &mockExtractor{
		extractFn: func(ctx context.Context, input extract.Input) ([]extract.Candidate, error) {
			// The same fact twice in one batch: the second must be caught
			// against the first one's fresh write.
			return []extract.Candidate{
				{Text: fact, Tags: []string{"Redis"}, Category: "Infrastructure"},
				{Text: fact, Tags: []string{"Redis"}, Category: "Infrastructure"},
			}, nil
		},
	}
	uc, _ := newTestUseCases(extractor)
	project := createTestProject(t, uc)

	result, err := uc.Ingest(context.Background(), testUserID, project.ID, "User: redis twice\n\nAI: ok")
	gt.NoError(t, err).Required()

	gt.Array(t, result.Saved).Length(1)
	gt.Array(t, result.Ignored).Length(1).Required()
	gt.Value(t, result.Ignored[0].Reason).Equal("Duplicate")
}

func TestIngest_ContextPassedToExtractor(t *testing.T) {
	var receivedContext string
	extractor := &mockExtractor{
		extractFn: func(ctx context.Context, input extract.Input) ([]extract.Candidate, error) {
			receivedContext = input.Context
			return nil, nil
		},
	}
	uc, repo := newTestUseCases(extractor)
	project := createTestProject(t, uc)
	seedMemory(t, repo, project.ID, "Existing fact about the database", nil)

	_, err := uc.Ingest(context.Background(), testUserID, project.ID, "User: more\n\nAI: ok")
	gt.NoError(t, err).Required()

	gt.String(t, receivedContext).Contains("- [")
	gt.String(t, receivedContext).Contains("Existing fact about the database")
}

func TestIngest_ContextOrderedOldestFirst(t *testing.T) {
	var receivedContext string
	extractor := &mockExtractor{
		extractFn: func(ctx context.Context, input extract.Input) ([]extract.Candidate, error) {
			receivedContext = input.Context
			return nil, nil
		},
	}
	uc, repo := newTestUseCases(extractor)
	project := createTestProject(t, uc)

	// A later correction must appear below the fact it supersedes, so the
	// extractor reads history in chronological order.
	seedMemory(t, repo, project.ID, "Budget: 100", nil)
	seedMemory(t, repo, project.ID, "Budget: 150", nil)

	_, err := uc.Ingest(context.Background(), testUserID, project.ID, "User: what is the budget now?\n\nAI: let me check")
	gt.NoError(t, err).Required()

	older := strings.Index(receivedContext, "Budget: 100")
	newer := strings.Index(receivedContext, "Budget: 150")
	gt.Number(t, older).GreaterOrEqual(0)
	gt.Number(t, newer).Greater(older)
}

func TestIngest_ContextEntryCountBounded(t *testing.T) {
	var receivedContext string
	extractor := &mockExtractor{
		extractFn: func(ctx context.Context, input extract.Input) ([]extract.Candidate, error) {
			receivedContext = input.Context
			return nil, nil
		},
	}
	uc, repo := newTestUseCases(extractor)
	project := createTestProject(t, uc)

	policy := config.DefaultPolicy()
	for i := 0; i < policy.Context.SimilarLimit+policy.Context.RecentLimit+5; i++ {
		seedMemory(t, repo, project.ID, fmt.Sprintf("fact number %d", i), nil)
	}

	_, err := uc.Ingest(context.Background(), testUserID, project.ID, "User: summarize\n\nAI: ok")
	gt.NoError(t, err).Required()

	lines := strings.Split(receivedContext, "\n")
	gt.Number(t, len(lines)).Greater(0)
	gt.Number(t, len(lines)).LessOrEqual(policy.Context.SimilarLimit + policy.Context.RecentLimit)
}

func TestIngest_EmbedderFailureDegradesContext(t *testing.T) {
	var receivedContext string
	extractor := &mockExtractor{
		extractFn: func(ctx context.Context, input extract.Input) ([]extract.Candidate, error) {
			receivedContext = input.Context
			return nil, nil
		},
	}

	embedder := &mockEmbedder{
		embedFn: func(ctx context.Context, text string) ([]float32, error) {
			return nil, goerr.New("embedding service down")
		},
	}
	uc, _ := newTestUseCasesWithEmbedder(extractor, embedder)
	project := createTestProject(t, uc)

	_, err := uc.Ingest(context.Background(), testUserID, project.ID, "User: hello\n\nAI: hi")
	gt.NoError(t, err).Required()
	gt.Value(t, receivedContext).Equal("")
}

func TestIngest_CandidateEmbeddingFailureSkips(t *testing.T) {
	extractor := &mockExtractor{
		extractFn: func(ctx context.Context, input extract.Input) ([]extract.Candidate, error) {
			return []extract.Candidate{
				{Text: "good fact", Tags: []string{"ok"}, Category: "other"},
				{Text: "bad fact", Tags: []string{"fail"}, Category: "other"},
			}, nil
		},
	}

	embedder := &mockEmbedder{
		embedFn: func(ctx context.Context, text string) ([]float32, error) {
			if text == "bad fact" {
				return nil, errors.New("embedding failed")
			}
			return textEmbedding(text), nil
		},
	}
	uc, _ := newTestUseCasesWithEmbedder(extractor, embedder)
	project := createTestProject(t, uc)

	result, err := uc.Ingest(context.Background(), testUserID, project.ID, "User: mixed\n\nAI: ok")
	gt.NoError(t, err).Required()

	gt.Array(t, result.Saved).Length(1).Required()
	gt.Value(t, result.Saved[0].Text).Equal("good fact")
	gt.Array(t, result.Ignored).Length(1).Required()
	gt.Value(t, result.Ignored[0].Text).Equal("bad fact")
}

func TestIngest_RejectsEmptyConversation(t *testing.T) {
	uc, _ := newTestUseCases(&mockExtractor{})
	project := createTestProject(t, uc)

	_, err := uc.Ingest(context.Background(), testUserID, project.ID, "   ")
	gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()
}

func TestIngest_DeniesForeignProject(t *testing.T) {
	uc, _ := newTestUseCases(&mockExtractor{})
	project := createTestProject(t, uc)

	_, err := uc.Ingest(context.Background(), types.UserID("intruder"), project.ID, "User: hi\n\nAI: hi")
	gt.Bool(t, errors.Is(err, usecase.ErrAccessDenied)).True()
}
