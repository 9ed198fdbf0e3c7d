package interfaces

import (
	"context"

	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
)

// ReportRepository defines the interface for cached report persistence.
// The cache is append-only: rows under stale fingerprints are superseded,
// never deleted (except by project cascade).
type ReportRepository interface {
	// Create persists a newly generated report
	Create(ctx context.Context, report *model.Report) (*model.Report, error)

	// GetByFingerprint retrieves the report cached for the given memory-set
	// fingerprint. A cache miss returns (nil, nil), not an error.
	GetByFingerprint(ctx context.Context, projectID types.ProjectID, fingerprint string) (*model.Report, error)

	// ListByProject retrieves all reports of a project, newest first
	ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.Report, error)
}
