package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
	"github.com/mnemo-lab/mnemosyne/pkg/service/extract"
	"github.com/mnemo-lab/mnemosyne/pkg/utils/logging"
)

// IngestResult reports what happened to each extracted candidate.
type IngestResult struct {
	Saved   []*model.Memory
	Ignored []IgnoredCandidate
}

// IgnoredCandidate is a candidate that was extracted but not persisted.
type IgnoredCandidate struct {
	Text   string
	Reason string
	// Distance is the cosine distance to the nearest existing memory when
	// the reason is a duplicate; zero otherwise.
	Distance float64
}

// Ingest runs the full pipeline for one conversation turn: context
// assembly, fact extraction, per-candidate embedding, deduplication, and
// persistence. Candidates are processed strictly in extraction order so
// that a later near-duplicate within the same batch is caught against an
// earlier one.
func (uc *UseCases) Ingest(ctx context.Context, userID types.UserID, projectID types.ProjectID, conversation string) (*IngestResult, error) {
	if strings.TrimSpace(conversation) == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "conversation text is required")
	}

	if _, err := uc.getOwnedProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	logger := logging.From(ctx)

	// Context assembly degrades gracefully: a broken embedder or store must
	// not lose the conversation, only the extractor's background knowledge.
	var priorContext string
	if convEmbedding, err := uc.embedder.Embed(ctx, conversation); err != nil {
		logger.Warn("context embedding failed, extracting without context", "error", err)
	} else if priorContext, err = uc.assembleContext(ctx, projectID, convEmbedding); err != nil {
		logger.Warn("context assembly failed, extracting without context", "error", err)
		priorContext = ""
	}

	candidates, err := uc.extractor.Extract(ctx, extract.Input{
		Conversation: conversation,
		Context:      priorContext,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to extract memories")
	}

	result := &IngestResult{}
	for _, candidate := range candidates {
		embedding, err := uc.embedder.Embed(ctx, candidate.Text)
		if err != nil {
			logger.Warn("candidate embedding failed, skipping", "text", candidate.Text, "error", err)
			result.Ignored = append(result.Ignored, IgnoredCandidate{
				Text:   candidate.Text,
				Reason: "Embedding failed",
			})
			continue
		}

		if !uc.isCorrection(candidate) {
			duplicate, distance, err := uc.findDuplicate(ctx, projectID, embedding)
			if err != nil {
				return result, err
			}
			if duplicate != nil {
				result.Ignored = append(result.Ignored, IgnoredCandidate{
					Text:     candidate.Text,
					Reason:   "Duplicate",
					Distance: distance,
				})
				continue
			}
		}

		saved, err := uc.repo.Memory().Create(ctx, projectID, &model.Memory{
			Text:      candidate.Text,
			Embedding: embedding,
			Tags:      candidate.Tags,
			Category:  candidate.Category,
			Source:    types.SourceConversation,
		})
		if err != nil {
			return result, goerr.Wrap(err, "failed to persist memory", goerr.V("text", candidate.Text))
		}
		result.Saved = append(result.Saved, saved)
	}

	return result, nil
}

// isCorrection reports whether any candidate tag contains a correction
// keyword. Corrections bypass dedup: a state update ("budget is now 60k")
// sits almost on top of the fact it supersedes in vector space, and
// dropping it would freeze the stale value forever.
func (uc *UseCases) isCorrection(candidate extract.Candidate) bool {
	for _, tag := range candidate.Tags {
		lowered := strings.ToLower(tag)
		for _, keyword := range uc.policy.Dedup.CorrectionKeywords {
			if strings.Contains(lowered, keyword) {
				return true
			}
		}
	}
	return false
}

// findDuplicate returns the nearest existing memory when it sits within
// the dedup distance threshold.
func (uc *UseCases) findDuplicate(ctx context.Context, projectID types.ProjectID, embedding []float32) (*model.Memory, float64, error) {
	matches, err := uc.repo.Memory().FindNearest(ctx, projectID, embedding, 1)
	if err != nil {
		return nil, 0, goerr.Wrap(err, "failed to check for duplicates")
	}
	if len(matches) == 0 {
		return nil, 0, nil
	}
	if matches[0].Distance < uc.policy.Dedup.DistanceThreshold {
		return matches[0].Memory, matches[0].Distance, nil
	}
	return nil, 0, nil
}
