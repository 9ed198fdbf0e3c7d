package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type projectDoc struct {
	ID        types.ProjectID `firestore:"id"`
	Name      string          `firestore:"name"`
	UserID    types.UserID    `firestore:"user_id"`
	CreatedAt time.Time       `firestore:"created_at"`
}

func toProjectDoc(p *model.Project) *projectDoc {
	return &projectDoc{
		ID:        p.ID,
		Name:      p.Name,
		UserID:    p.UserID,
		CreatedAt: p.CreatedAt,
	}
}

func fromProjectDoc(d *projectDoc) *model.Project {
	return &model.Project{
		ID:        d.ID,
		Name:      d.Name,
		UserID:    d.UserID,
		CreatedAt: d.CreatedAt,
	}
}

type projectRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newProjectRepository(client *firestore.Client) *projectRepository {
	return &projectRepository{client: client}
}

func (r *projectRepository) projectsCollection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "projects")
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) (*model.Project, error) {
	if err := project.Validate(); err != nil {
		return nil, err
	}

	created := *project
	if created.ID == "" {
		created.ID = types.NewProjectID()
	}
	created.CreatedAt = time.Now().UTC()

	docRef := r.projectsCollection().Doc(string(created.ID))
	if _, err := docRef.Set(ctx, toProjectDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create project", goerr.V("projectID", created.ID))
	}

	return &created, nil
}

func (r *projectRepository) Get(ctx context.Context, projectID types.ProjectID) (*model.Project, error) {
	doc, err := r.projectsCollection().Doc(string(projectID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "project not found", goerr.V("projectID", projectID))
		}
		return nil, goerr.Wrap(err, "failed to get project", goerr.V("projectID", projectID))
	}

	var d projectDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal project", goerr.V("projectID", projectID))
	}

	return fromProjectDoc(&d), nil
}

func (r *projectRepository) ListByUser(ctx context.Context, userID types.UserID) ([]*model.Project, error) {
	iter := r.projectsCollection().
		Where("user_id", "==", string(userID)).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	projects := make([]*model.Project, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate projects", goerr.V("userID", userID))
		}

		var d projectDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal project")
		}

		projects = append(projects, fromProjectDoc(&d))
	}

	return projects, nil
}

// Delete removes the project document and all documents in its memories
// and reports subcollections. Firestore does not cascade deletes, so the
// subcollections are drained with a BulkWriter first.
func (r *projectRepository) Delete(ctx context.Context, projectID types.ProjectID) error {
	docRef := r.projectsCollection().Doc(string(projectID))

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "project not found", goerr.V("projectID", projectID))
		}
		return goerr.Wrap(err, "failed to get project", goerr.V("projectID", projectID))
	}

	bw := r.client.BulkWriter(ctx)
	for _, sub := range []string{"memories", "reports"} {
		iter := docRef.Collection(sub).Documents(ctx)
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				return goerr.Wrap(err, "failed to list subcollection for delete",
					goerr.V("projectID", projectID), goerr.V("collection", sub))
			}
			if _, err := bw.Delete(doc.Ref); err != nil {
				iter.Stop()
				return goerr.Wrap(err, "failed to queue subcollection delete",
					goerr.V("projectID", projectID), goerr.V("collection", sub))
			}
		}
		iter.Stop()
	}
	bw.Flush()

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete project", goerr.V("projectID", projectID))
	}

	return nil
}
