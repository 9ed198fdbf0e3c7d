package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
	"github.com/mnemo-lab/mnemosyne/pkg/repository/firestore"
	"github.com/mnemo-lab/mnemosyne/pkg/repository/memory"
)

func runReportRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns ID and timestamp", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		project := newTestProject(t, repo)

		created, err := repo.Report().Create(ctx, &model.Report{
			ProjectID:   project.ID,
			Content:     "# Weekly Summary",
			Fingerprint: "fp-abc",
		})
		gt.NoError(t, err).Required()

		gt.Value(t, created.ID).NotEqual(types.ReportID(""))
		gt.Bool(t, created.CreatedAt.IsZero()).False()
	})

	t.Run("GetByFingerprint returns nil on miss", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		project := newTestProject(t, repo)

		report, err := repo.Report().GetByFingerprint(ctx, project.ID, "no-such-fp")
		gt.NoError(t, err).Required()
		gt.Value(t, report).Nil()
	})

	t.Run("GetByFingerprint returns the cached report", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		project := newTestProject(t, repo)

		created, err := repo.Report().Create(ctx, &model.Report{
			ProjectID:   project.ID,
			Content:     "cached content",
			Fingerprint: "fp-hit",
		})
		gt.NoError(t, err).Required()

		hit, err := repo.Report().GetByFingerprint(ctx, project.ID, "fp-hit")
		gt.NoError(t, err).Required()
		gt.Value(t, hit).NotNil().Required()
		gt.Value(t, hit.ID).Equal(created.ID)
		gt.Value(t, hit.Content).Equal("cached content")
	})

	t.Run("GetByFingerprint prefers the newest on duplicates", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		project := newTestProject(t, repo)

		_, err := repo.Report().Create(ctx, &model.Report{
			ProjectID:   project.ID,
			Content:     "old",
			Fingerprint: "fp-dup",
		})
		gt.NoError(t, err).Required()
		time.Sleep(time.Millisecond)

		newer, err := repo.Report().Create(ctx, &model.Report{
			ProjectID:   project.ID,
			Content:     "new",
			Fingerprint: "fp-dup",
		})
		gt.NoError(t, err).Required()

		hit, err := repo.Report().GetByFingerprint(ctx, project.ID, "fp-dup")
		gt.NoError(t, err).Required()
		gt.Value(t, hit).NotNil().Required()
		gt.Value(t, hit.ID).Equal(newer.ID)
	})

	t.Run("ListByProject returns newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		project := newTestProject(t, repo)

		for _, fp := range []string{"fp-1", "fp-2", "fp-3"} {
			_, err := repo.Report().Create(ctx, &model.Report{
				ProjectID:   project.ID,
				Content:     fp,
				Fingerprint: fp,
			})
			gt.NoError(t, err).Required()
			time.Sleep(time.Millisecond)
		}

		listed, err := repo.Report().ListByProject(ctx, project.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, listed).Length(3).Required()
		gt.Value(t, listed[0].Fingerprint).Equal("fp-3")
		gt.Value(t, listed[2].Fingerprint).Equal("fp-1")
	})
}

func TestReportRepository_Memory(t *testing.T) {
	runReportRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestReportRepository_Firestore(t *testing.T) {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	runReportRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		repo, err := firestore.New(context.Background(), projectID, os.Getenv("TEST_FIRESTORE_DATABASE_ID"),
			firestore.WithCollectionPrefix("test-"+time.Now().Format("20060102150405")+"-"))
		gt.NoError(t, err).Required()
		return repo
	})
}
