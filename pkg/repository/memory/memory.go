package memory

import (
	"github.com/mnemo-lab/mnemosyne/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is the in-memory repository backend, used for development and
// tests. It mirrors the Firestore backend's semantics, including vector
// distance ordering and lexical scoring.
type Memory struct {
	project *projectRepository
	memory  *memoryStoreRepository
	report  *reportRepository
	tokens  *tokenStore
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	memoryRepo := newMemoryStoreRepository()
	reportRepo := newReportRepository()
	projectRepo := newProjectRepository(memoryRepo, reportRepo)

	return &Memory{
		project: projectRepo,
		memory:  memoryRepo,
		report:  reportRepo,
		tokens:  newTokenStore(),
	}
}

func (m *Memory) Project() interfaces.ProjectRepository {
	return m.project
}

func (m *Memory) Memory() interfaces.MemoryRepository {
	return m.memory
}

func (m *Memory) Report() interfaces.ReportRepository {
	return m.report
}

func (m *Memory) Close() error {
	return nil
}
