package usecase

import (
	"github.com/mnemo-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model/config"
	"github.com/mnemo-lab/mnemosyne/pkg/service/archive"
	"github.com/mnemo-lab/mnemosyne/pkg/service/embedding"
	"github.com/mnemo-lab/mnemosyne/pkg/service/extract"
	"github.com/mnemo-lab/mnemosyne/pkg/service/report"
)

// UseCases bundles the memory engine operations: ingestion, recall,
// deletion resolution, report export, and project/token management.
type UseCases struct {
	repo      interfaces.Repository
	policy    *config.Policy
	embedder  embedding.Service
	extractor extract.Service
	reporter  report.Service
	archiver  archive.Service
}

type Option func(*UseCases)

// WithPolicy replaces the default tuning policy
func WithPolicy(policy *config.Policy) Option {
	return func(uc *UseCases) {
		uc.policy = policy
	}
}

// WithArchiver enables asynchronous report archival
func WithArchiver(archiver archive.Service) Option {
	return func(uc *UseCases) {
		uc.archiver = archiver
	}
}

func New(repo interfaces.Repository, embedder embedding.Service, extractor extract.Service, reporter report.Service, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:      repo,
		policy:    config.DefaultPolicy(),
		embedder:  embedder,
		extractor: extractor,
		reporter:  reporter,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
