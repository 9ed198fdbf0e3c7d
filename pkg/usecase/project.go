package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
)

// CreateProject creates a new project owned by the given user
func (uc *UseCases) CreateProject(ctx context.Context, userID types.UserID, name string) (*model.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "project name is required")
	}

	project, err := uc.repo.Project().Create(ctx, &model.Project{
		Name:   strings.TrimSpace(name),
		UserID: userID,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create project")
	}

	return project, nil
}

// GetProject retrieves a project after verifying ownership
func (uc *UseCases) GetProject(ctx context.Context, userID types.UserID, projectID types.ProjectID) (*model.Project, error) {
	return uc.getOwnedProject(ctx, userID, projectID)
}

// ListProjects retrieves all projects owned by the user, newest first
func (uc *UseCases) ListProjects(ctx context.Context, userID types.UserID) ([]*model.Project, error) {
	projects, err := uc.repo.Project().ListByUser(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list projects")
	}
	return projects, nil
}

// DeleteProject deletes a project with all its memories and reports
func (uc *UseCases) DeleteProject(ctx context.Context, userID types.UserID, projectID types.ProjectID) error {
	if _, err := uc.getOwnedProject(ctx, userID, projectID); err != nil {
		return err
	}

	if err := uc.repo.Project().Delete(ctx, projectID); err != nil {
		return goerr.Wrap(err, "failed to delete project", goerr.V("projectID", projectID))
	}

	return nil
}

// getOwnedProject loads a project and verifies the caller owns it. A
// project owned by someone else is reported as access denied without
// confirming its existence.
func (uc *UseCases) getOwnedProject(ctx context.Context, userID types.UserID, projectID types.ProjectID) (*model.Project, error) {
	project, err := uc.repo.Project().Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrProjectNotFound, "project not found", goerr.V("projectID", projectID))
		}
		return nil, goerr.Wrap(err, "failed to get project", goerr.V("projectID", projectID))
	}

	if !project.OwnedBy(userID) {
		return nil, goerr.Wrap(ErrAccessDenied, "project access denied", goerr.V("projectID", projectID))
	}

	return project, nil
}
