package usecase

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
)

// Recall performs hybrid retrieval: a vector similarity search over the
// whole query plus a per-keyword trigram search against memory tags. The
// lexical leg catches exact-term questions ("what about the API_KEY?")
// that embeddings blur out.
func (uc *UseCases) Recall(ctx context.Context, userID types.UserID, projectID types.ProjectID, query string) ([]*model.Memory, error) {
	if strings.TrimSpace(query) == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "query text is required")
	}

	if _, err := uc.getOwnedProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	queryEmbedding, err := uc.embedder.Embed(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	matches, err := uc.repo.Memory().FindNearest(ctx, projectID, queryEmbedding, uc.policy.Retrieval.VectorLimit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search memories by vector")
	}

	// Vector results come first in the merge; lexical matches only fill in
	// what the embedding missed.
	seen := make(map[types.MemoryID]bool)
	merged := make([]*model.Memory, 0, uc.policy.Retrieval.ResultLimit)
	for _, match := range matches {
		if !seen[match.Memory.ID] {
			seen[match.Memory.ID] = true
			merged = append(merged, match.Memory)
		}
	}

	for _, keyword := range uc.extractKeywords(query) {
		threshold := uc.policy.Retrieval.LongKeywordThreshold
		if utf8.RuneCountInString(keyword) <= uc.policy.Retrieval.ShortKeywordMaxRunes {
			threshold = uc.policy.Retrieval.ShortKeywordThreshold
		}

		found, err := uc.repo.Memory().SearchSimilar(ctx, projectID, interfaces.MatchTags,
			keyword, threshold, uc.policy.Retrieval.MatchesPerKeyword)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to search memories by keyword", goerr.V("keyword", keyword))
		}
		for _, m := range found {
			if !seen[m.ID] {
				seen[m.ID] = true
				merged = append(merged, m)
			}
		}
	}

	if len(merged) > uc.policy.Retrieval.ResultLimit {
		merged = merged[:uc.policy.Retrieval.ResultLimit]
	}

	// The capped set reads best in chronological context, newest first.
	sort.Slice(merged, func(i, j int) bool {
		return merged[j].Before(merged[i])
	})

	return merged, nil
}

// extractKeywords tokenizes the query and drops short tokens and
// stopwords. Remaining tokens feed the lexical search leg.
func (uc *UseCases) extractKeywords(query string) []string {
	stopwords := make(map[string]bool, len(uc.policy.Retrieval.Stopwords))
	for _, w := range uc.policy.Retrieval.Stopwords {
		stopwords[w] = true
	}

	var keywords []string
	for _, token := range strings.Fields(strings.ToLower(query)) {
		token = strings.Trim(token, ".,!?;:\"'()")
		if utf8.RuneCountInString(token) < uc.policy.Retrieval.MinKeywordRunes {
			continue
		}
		if stopwords[token] {
			continue
		}
		keywords = append(keywords, token)
	}
	return keywords
}
