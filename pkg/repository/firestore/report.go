package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type reportDoc struct {
	ID          types.ReportID  `firestore:"id"`
	ProjectID   types.ProjectID `firestore:"project_id"`
	Content     string          `firestore:"content"`
	Fingerprint string          `firestore:"fingerprint"`
	CreatedAt   time.Time       `firestore:"created_at"`
}

func toReportDoc(r *model.Report) *reportDoc {
	return &reportDoc{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		Content:     r.Content,
		Fingerprint: r.Fingerprint,
		CreatedAt:   r.CreatedAt,
	}
}

func fromReportDoc(d *reportDoc) *model.Report {
	return &model.Report{
		ID:          d.ID,
		ProjectID:   d.ProjectID,
		Content:     d.Content,
		Fingerprint: d.Fingerprint,
		CreatedAt:   d.CreatedAt,
	}
}

type reportRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newReportRepository(client *firestore.Client) *reportRepository {
	return &reportRepository{client: client}
}

func (r *reportRepository) reportsCollection(projectID types.ProjectID) *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "projects").Doc(string(projectID)).
		Collection("reports")
}

func (r *reportRepository) Create(ctx context.Context, report *model.Report) (*model.Report, error) {
	created := *report
	if created.ID == "" {
		created.ID = types.NewReportID()
	}
	created.CreatedAt = time.Now().UTC()

	docRef := r.reportsCollection(created.ProjectID).Doc(string(created.ID))
	if _, err := docRef.Set(ctx, toReportDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create report", goerr.V("reportID", created.ID))
	}

	return &created, nil
}

func (r *reportRepository) GetByFingerprint(ctx context.Context, projectID types.ProjectID, fingerprint string) (*model.Report, error) {
	iter := r.reportsCollection(projectID).
		Where("fingerprint", "==", fingerprint).
		Documents(ctx)
	defer iter.Stop()

	// Fingerprint collisions within a project only occur when a report was
	// regenerated for the same set; keep the newest.
	var latest *model.Report
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to query reports by fingerprint",
				goerr.V("projectID", projectID))
		}

		var d reportDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal report")
		}

		report := fromReportDoc(&d)
		if latest == nil || report.CreatedAt.After(latest.CreatedAt) {
			latest = report
		}
	}

	return latest, nil
}

func (r *reportRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.Report, error) {
	iter := r.reportsCollection(projectID).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	reports := make([]*model.Report, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate reports", goerr.V("projectID", projectID))
		}

		var d reportDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal report")
		}

		reports = append(reports, fromReportDoc(&d))
	}

	return reports, nil
}
