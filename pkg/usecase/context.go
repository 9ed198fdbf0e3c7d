package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
	"golang.org/x/sync/errgroup"
)

// assembleContext builds the prior-memory block handed to the extractor:
// the memories most similar to the conversation plus the most recent ones,
// merged by id and rendered oldest first. Similarity supplies topical
// facts; recency resolves references like "add 10 to that".
func (uc *UseCases) assembleContext(ctx context.Context, projectID types.ProjectID, queryEmbedding []float32) (string, error) {
	var similar []*model.MemoryMatch
	var recent []*model.Memory

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		matches, err := uc.repo.Memory().FindNearest(egCtx, projectID, queryEmbedding, uc.policy.Context.SimilarLimit)
		if err != nil {
			return goerr.Wrap(err, "failed to find similar memories for context")
		}
		similar = matches
		return nil
	})
	eg.Go(func() error {
		memories, err := uc.repo.Memory().ListRecent(egCtx, projectID, uc.policy.Context.RecentLimit)
		if err != nil {
			return goerr.Wrap(err, "failed to list recent memories for context")
		}
		recent = memories
		return nil
	})
	if err := eg.Wait(); err != nil {
		return "", err
	}

	seen := make(map[types.MemoryID]bool)
	merged := make([]*model.Memory, 0, len(similar)+len(recent))
	for _, match := range similar {
		if !seen[match.Memory.ID] {
			seen[match.Memory.ID] = true
			merged = append(merged, match.Memory)
		}
	}
	for _, m := range recent {
		if !seen[m.ID] {
			seen[m.ID] = true
			merged = append(merged, m)
		}
	}

	if len(merged) == 0 {
		return "", nil
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Before(merged[j])
	})

	lines := make([]string, len(merged))
	for i, m := range merged {
		lines[i] = m.ContextLine()
	}
	return strings.Join(lines, "\n"), nil
}
