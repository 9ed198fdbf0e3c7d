package interfaces

import (
	"context"

	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
)

// ProjectRepository defines the interface for Project data persistence
type ProjectRepository interface {
	// Create creates a new project
	Create(ctx context.Context, project *model.Project) (*model.Project, error)

	// Get retrieves a project by ID
	Get(ctx context.Context, projectID types.ProjectID) (*model.Project, error)

	// ListByUser retrieves all projects owned by a user, newest first
	ListByUser(ctx context.Context, userID types.UserID) ([]*model.Project, error)

	// Delete deletes a project and cascades to its memories and reports
	Delete(ctx context.Context, projectID types.ProjectID) error
}
