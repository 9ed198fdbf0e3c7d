package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
)

// Project is the ownership and isolation boundary for memories. Every
// memory operation is scoped to one project, and a project belongs to
// exactly one user.
type Project struct {
	ID        types.ProjectID
	Name      string
	UserID    types.UserID
	CreatedAt time.Time
}

// Validate checks required fields before persistence
func (p *Project) Validate() error {
	if p.Name == "" {
		return goerr.New("project name is required")
	}
	if err := p.UserID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid project owner")
	}
	return nil
}

// OwnedBy reports whether the given user owns this project.
func (p *Project) OwnedBy(userID types.UserID) bool {
	return p.UserID == userID
}
