package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
)

type projectRepository struct {
	mu       sync.RWMutex
	projects map[types.ProjectID]*model.Project

	memories *memoryStoreRepository
	reports  *reportRepository
}

func newProjectRepository(memories *memoryStoreRepository, reports *reportRepository) *projectRepository {
	return &projectRepository{
		projects: make(map[types.ProjectID]*model.Project),
		memories: memories,
		reports:  reports,
	}
}

func copyProject(p *model.Project) *model.Project {
	copied := *p
	return &copied
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyProject(project)
	if created.ID == "" {
		created.ID = types.NewProjectID()
	}
	created.CreatedAt = time.Now().UTC()

	r.projects[created.ID] = created
	return copyProject(created), nil
}

func (r *projectRepository) Get(ctx context.Context, projectID types.ProjectID) (*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	project, exists := r.projects[projectID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "project not found", goerr.V("projectID", projectID))
	}
	return copyProject(project), nil
}

func (r *projectRepository) ListByUser(ctx context.Context, userID types.UserID) ([]*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Project, 0)
	for _, p := range r.projects {
		if p.UserID == userID {
			result = append(result, copyProject(p))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *projectRepository) Delete(ctx context.Context, projectID types.ProjectID) error {
	r.mu.Lock()
	if _, exists := r.projects[projectID]; !exists {
		r.mu.Unlock()
		return goerr.Wrap(ErrNotFound, "project not found", goerr.V("projectID", projectID))
	}
	delete(r.projects, projectID)
	r.mu.Unlock()

	// Cascade
	r.memories.deleteByProject(projectID)
	r.reports.deleteByProject(projectID)
	return nil
}
