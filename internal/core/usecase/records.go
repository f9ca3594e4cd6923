package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
	"github.com/kirillkom/policy-sorter/internal/core/ports"
)

type ListRecordsUseCase struct {
	repo ports.RecordRepository
	opts Options
}

func NewListRecordsUseCase(repo ports.RecordRepository, opts Options) *ListRecordsUseCase {
	return &ListRecordsUseCase{repo: repo, opts: opts.normalize()}
}

func (uc *ListRecordsUseCase) ListRecords(ctx context.Context) ([]*domain.Record, error) {
	return listRecords(ctx, uc.repo, uc.opts)
}

// listRecords loads every readable record; unreadable ones are logged and left out.
func listRecords(ctx context.Context, repo ports.RecordRepository, opts Options) ([]*domain.Record, error) {
	keys, err := repo.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list metadata records: %w", err)
	}
	out := make([]*domain.Record, 0, len(keys))
	for _, key := range keys {
		rec, err := repo.Load(ctx, key)
		if err != nil {
			opts.Logger.WarnContext(ctx, "record_unreadable", "key", key, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
