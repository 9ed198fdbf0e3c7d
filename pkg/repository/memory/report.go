package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
)

type reportRepository struct {
	mu      sync.RWMutex
	reports map[types.ProjectID][]*model.Report
}

func newReportRepository() *reportRepository {
	return &reportRepository{
		reports: make(map[types.ProjectID][]*model.Report),
	}
}

func copyReport(r *model.Report) *model.Report {
	copied := *r
	return &copied
}

func (r *reportRepository) Create(ctx context.Context, report *model.Report) (*model.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyReport(report)
	if created.ID == "" {
		created.ID = types.NewReportID()
	}
	created.CreatedAt = time.Now().UTC()

	r.reports[created.ProjectID] = append(r.reports[created.ProjectID], created)
	return copyReport(created), nil
}

func (r *reportRepository) GetByFingerprint(ctx context.Context, projectID types.ProjectID, fingerprint string) (*model.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Newest match wins if duplicates ever slip in under concurrent writers.
	var found *model.Report
	for _, report := range r.reports[projectID] {
		if report.Fingerprint != fingerprint {
			continue
		}
		if found == nil || report.CreatedAt.After(found.CreatedAt) {
			found = report
		}
	}
	if found == nil {
		return nil, nil
	}
	return copyReport(found), nil
}

func (r *reportRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Report, 0, len(r.reports[projectID]))
	for _, report := range r.reports[projectID] {
		result = append(result, copyReport(report))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *reportRepository) deleteByProject(projectID types.ProjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reports, projectID)
}
