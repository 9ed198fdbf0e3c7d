package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
	"github.com/mnemo-lab/mnemosyne/pkg/utils/async"
	"github.com/mnemo-lab/mnemosyne/pkg/utils/logging"
)

// ExportResult carries the report and whether it was served from cache.
type ExportResult struct {
	Report *model.Report
	Cached bool
}

// Export returns the project report, generating it only when the memory
// set changed since the last export. The cache key is a fingerprint over
// the ordered (id, created_at) pairs of the whole set, so any addition or
// deletion invalidates it while repeated exports of an unchanged project
// cost no LLM call.
func (uc *UseCases) Export(ctx context.Context, userID types.UserID, projectID types.ProjectID) (*ExportResult, error) {
	if _, err := uc.getOwnedProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	memories, err := uc.repo.Memory().List(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list memories for report")
	}
	if len(memories) == 0 {
		return nil, goerr.Wrap(ErrNoMemories, "cannot report on an empty project")
	}

	// List returns newest first; the transcript and the fingerprint both
	// use chronological order.
	ordered := make([]*model.Memory, len(memories))
	for i, m := range memories {
		ordered[len(memories)-1-i] = m
	}

	fingerprint := model.Fingerprint(ordered)
	if cached, err := uc.repo.Report().GetByFingerprint(ctx, projectID, fingerprint); err != nil {
		return nil, goerr.Wrap(err, "failed to check report cache")
	} else if cached != nil {
		return &ExportResult{Report: cached, Cached: true}, nil
	}

	content, err := uc.reporter.Generate(ctx, ordered)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate report")
	}

	report, err := uc.repo.Report().Create(ctx, &model.Report{
		ProjectID:   projectID,
		Content:     content,
		Fingerprint: fingerprint,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to persist report")
	}

	if uc.archiver != nil {
		async.Dispatch(ctx, func(ctx context.Context) error {
			if err := uc.archiver.Put(ctx, report); err != nil {
				return goerr.Wrap(err, "failed to archive report", goerr.V("reportID", report.ID))
			}
			logging.From(ctx).Info("report archived", "reportID", report.ID)
			return nil
		})
	}

	return &ExportResult{Report: report, Cached: false}, nil
}
