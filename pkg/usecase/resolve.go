package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
)

// ResolveInput selects which memory to delete. Exactly one mode applies:
// MemoryID (direct), Fragment (search), or neither (undo the newest).
type ResolveInput struct {
	MemoryID types.MemoryID
	Fragment string
}

// ResolveResult confirms a deletion with a short preview of what was
// removed.
type ResolveResult struct {
	Deleted *model.Memory
	Preview string
}

// Resolve deletes at most one memory. Fragment search runs a folded
// substring pass first and falls back to trigram similarity for longer
// fragments, always preferring the newest match. Fragments too generic to
// identify a single memory are rejected before any lookup.
func (uc *UseCases) Resolve(ctx context.Context, userID types.UserID, projectID types.ProjectID, input ResolveInput) (*ResolveResult, error) {
	if _, err := uc.getOwnedProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	var target *model.Memory
	switch {
	case input.MemoryID != "":
		m, err := uc.repo.Memory().Get(ctx, projectID, input.MemoryID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, goerr.Wrap(ErrMemoryNotFound, "memory not found", goerr.V("memoryID", input.MemoryID))
			}
			return nil, goerr.Wrap(err, "failed to get memory", goerr.V("memoryID", input.MemoryID))
		}
		target = m

	case strings.TrimSpace(input.Fragment) != "":
		fragment := strings.TrimSpace(input.Fragment)
		if err := uc.checkFragment(fragment); err != nil {
			return nil, err
		}
		m, err := uc.findDeletionTarget(ctx, projectID, fragment)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, goerr.Wrap(ErrMemoryNotFound, "no memory matches the fragment", goerr.V("fragment", fragment))
		}
		target = m

	default:
		// Undo mode: the user wants the last remembered fact gone.
		recent, err := uc.repo.Memory().ListRecent(ctx, projectID, 1)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to find newest memory")
		}
		if len(recent) == 0 {
			return nil, goerr.Wrap(ErrNoMemories, "nothing to undo")
		}
		target = recent[0]
	}

	if err := uc.repo.Memory().Delete(ctx, projectID, target.ID); err != nil {
		return nil, goerr.Wrap(err, "failed to delete memory", goerr.V("memoryID", target.ID))
	}

	return &ResolveResult{
		Deleted: target,
		Preview: target.Preview(uc.policy.Resolve.PreviewRunes),
	}, nil
}

// checkFragment is the safety gate: a bare number like "500" or a
// two-letter word matches half the store, and deletion is irreversible.
func (uc *UseCases) checkFragment(fragment string) error {
	runeCount := utf8.RuneCountInString(fragment)
	if isNumeric(fragment) {
		if runeCount < uc.policy.Resolve.MinNumericRunes {
			return goerr.Wrap(ErrFragmentTooShort, "numeric fragment is too short",
				goerr.V("fragment", fragment),
				goerr.V("min_runes", uc.policy.Resolve.MinNumericRunes))
		}
		return nil
	}
	if runeCount < uc.policy.Resolve.MinTextRunes {
		return goerr.Wrap(ErrFragmentTooShort, "fragment is too short",
			goerr.V("fragment", fragment),
			goerr.V("min_runes", uc.policy.Resolve.MinTextRunes))
	}
	return nil
}

func (uc *UseCases) findDeletionTarget(ctx context.Context, projectID types.ProjectID, fragment string) (*model.Memory, error) {
	// Exact (folded) substring match wins; results come newest first.
	found, err := uc.repo.Memory().SearchSubstring(ctx, projectID, fragment)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search memories by substring")
	}
	if len(found) > 0 {
		return found[0], nil
	}

	if utf8.RuneCountInString(fragment) < uc.policy.Resolve.FuzzyMinRunes {
		return nil, nil
	}

	// Fuzzy fallback over both text and tags, newest match wins.
	var candidates []*model.Memory
	for _, field := range []interfaces.MatchField{interfaces.MatchText, interfaces.MatchTags} {
		matches, err := uc.repo.Memory().SearchSimilar(ctx, projectID, field,
			fragment, uc.policy.Resolve.FuzzyThreshold, uc.policy.Retrieval.ResultLimit)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to search memories by similarity")
		}
		candidates = append(candidates, matches...)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[j].Before(candidates[i])
	})
	return candidates[0], nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
