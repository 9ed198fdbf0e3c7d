package archive

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
)

// Service copies generated reports to an object storage bucket. Archival
// is best-effort: the report cache in the repository stays authoritative.
type Service interface {
	// Put stores the report content under
	// reports/{projectID}/{fingerprint}.md
	Put(ctx context.Context, report *model.Report) error
}

type client struct {
	storageClient *storage.Client
	bucket        string
}

// New creates a new archive service writing to the given GCS bucket
func New(ctx context.Context, bucket string) (Service, error) {
	if bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &client{
		storageClient: storageClient,
		bucket:        bucket,
	}, nil
}

func (c *client) Put(ctx context.Context, report *model.Report) error {
	key := fmt.Sprintf("reports/%s/%s.md", report.ProjectID, report.Fingerprint)

	w := c.storageClient.Bucket(c.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "text/markdown"

	if _, err := w.Write([]byte(report.Content)); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write report to bucket",
			goerr.V("bucket", c.bucket), goerr.V("key", key))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize report upload",
			goerr.V("bucket", c.bucket), goerr.V("key", key))
	}

	return nil
}
