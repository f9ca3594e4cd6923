package ports

import (
	"context"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
)

// DocumentAcquirer downloads remote documents into the raw collection.
type DocumentAcquirer interface {
	Acquire(ctx context.Context, urls []string) (*domain.Report, error)
}

// DocumentClassifierStage creates needs_review records for raw documents.
type DocumentClassifierStage interface {
	ClassifyAll(ctx context.Context) (*domain.Report, error)
}

// RecordReviewer moves records from needs_review to classified.
type RecordReviewer interface {
	ExportPending(ctx context.Context, path string) (int, error)
	ImportDecisions(ctx context.Context, path string) (*domain.Report, error)
	Approve(ctx context.Context, decision domain.ReviewDecision) (*domain.Report, error)
}

// DocumentOrganizer relocates classified documents.
type DocumentOrganizer interface {
	OrganizeAll(ctx context.Context) (*domain.Report, error)
}

// RecordReader lists persisted records.
type RecordReader interface {
	ListRecords(ctx context.Context) ([]*domain.Record, error)
}
