package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-lab/mnemosyne/pkg/service/archive"
	"github.com/urfave/cli/v3"
)

// Archive holds CLI flags for report archival to Cloud Storage
type Archive struct {
	bucket string
}

// Flags returns CLI flags for archive configuration
func (a *Archive) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "report-bucket",
			Usage:       "Cloud Storage bucket for report archival (disabled when empty)",
			Category:    "Archive",
			Sources:     cli.EnvVars("MNEMOSYNE_REPORT_BUCKET"),
			Destination: &a.bucket,
		},
	}
}

// Configure creates the archive service. Returns (nil, nil) when no bucket
// is configured: archival is optional and the engine runs without it.
func (a *Archive) Configure(ctx context.Context) (archive.Service, error) {
	if a.bucket == "" {
		return nil, nil
	}

	svc, err := archive.New(ctx, a.bucket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize archive service", goerr.V("bucket", a.bucket))
	}

	return svc, nil
}
