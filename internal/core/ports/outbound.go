package ports

import (
	"context"
	"io"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
)

// RecordRepository persists one metadata record per source document.
type RecordRepository interface {
	Keys(ctx context.Context) ([]string, error)
	Load(ctx context.Context, key string) (*domain.Record, error)
	Save(ctx context.Context, key string, rec *domain.Record) error
	Exists(ctx context.Context, key string) (bool, error)
}

// DocumentStore holds the flat raw document collection.
type DocumentStore interface {
	List(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, name string) (bool, error)
	Path(name string) string
	Save(ctx context.Context, name string, data io.Reader) (int64, error)
	// Relocate moves name to dstDir/dstName and returns the number of bytes moved.
	Relocate(ctx context.Context, name, dstDir, dstName string) (int64, error)
	// Restore moves a relocated file back under name.
	Restore(ctx context.Context, dstPath, name string) error
}

// ProvenanceLedger remembers where acquired documents came from.
type ProvenanceLedger interface {
	Lookup(ctx context.Context, filename string) (domain.Provenance, bool, error)
	Append(ctx context.Context, entry domain.Provenance) error
}

// TextExtractor returns the text (or a bounded prefix) of a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, name string) (string, error)
}

// DocumentClassifier classifies extracted text.
type DocumentClassifier interface {
	Classify(ctx context.Context, text string) (domain.Classification, error)
}

// Fetcher retrieves the bytes behind a remote locator.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// EventPublisher announces record status transitions.
type EventPublisher interface {
	PublishTransition(ctx context.Context, event domain.LifecycleEvent) error
}

// ReviewSheet exchanges records with the external review actor.
type ReviewSheet interface {
	Export(ctx context.Context, path string, records []*domain.Record) error
	Import(ctx context.Context, path string) ([]domain.ReviewDecision, error)
}
