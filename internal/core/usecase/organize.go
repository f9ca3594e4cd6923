package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
	"github.com/kirillkom/policy-sorter/internal/core/ports"
)

const StageOrganize = "organize"

type OrganizeDocumentsUseCase struct {
	repo        ports.RecordRepository
	docs        ports.DocumentStore
	policiesDir string
	opts        Options
}

func NewOrganizeDocumentsUseCase(
	repo ports.RecordRepository,
	docs ports.DocumentStore,
	policiesDir string,
	opts Options,
) *OrganizeDocumentsUseCase {
	return &OrganizeDocumentsUseCase{
		repo:        repo,
		docs:        docs,
		policiesDir: policiesDir,
		opts:        opts.normalize(),
	}
}

// OrganizeAll relocates every admitted record. Only classified records with all
// four classification fields resolved are admitted; nothing else is touched.
func (uc *OrganizeDocumentsUseCase) OrganizeAll(ctx context.Context) (*domain.Report, error) {
	keys, err := uc.repo.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list metadata records: %w", err)
	}

	report := domain.NewReport(StageOrganize, RunIDFrom(ctx))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		outcome := uc.organizeOne(ctx, key)
		report.Add(outcome)
		logOutcome(ctx, uc.opts.Logger, StageOrganize, outcome)
	}
	return report, nil
}

func (uc *OrganizeDocumentsUseCase) organizeOne(ctx context.Context, key string) domain.Outcome {
	rec, err := uc.repo.Load(ctx, key)
	if err != nil {
		return failed(key, domain.ReasonUnreadableRecord, err)
	}

	if skip, ok := admit(key, rec); !ok {
		return skip
	}

	fields := rec.Fields()
	destDir := domain.DestinationDir(uc.policiesDir, fields)
	generated := domain.BuildFilename(fields)
	name := rec.OriginalFilename

	moved, err := uc.docs.Relocate(ctx, name, destDir, generated)
	if err != nil {
		switch {
		case domain.IsKind(err, domain.ErrInputMissing):
			return failed(name, domain.ReasonSourceMissing, err)
		case errors.Is(err, fs.ErrExist):
			return failed(name, domain.ReasonDestinationExists, err)
		default:
			return failed(name, domain.ReasonMoveFailed, err)
		}
	}
	destPath := filepath.Join(destDir, generated)

	now := uc.opts.Now()
	updated := rec.Clone()
	if err := updated.MarkOrganized(generated, now); err != nil {
		return uc.rollback(ctx, name, destPath, domain.ReasonPersistFailed, err)
	}
	if err := uc.repo.Save(ctx, key, updated); err != nil {
		return uc.rollback(ctx, name, destPath, domain.ReasonPersistFailed, err)
	}
	publishTransition(ctx, uc.opts, updated, domain.StatusClassified, now)

	return domain.Outcome{
		Subject: name,
		Kind:    domain.OutcomeSucceeded,
		Target:  destPath,
		Detail:  fmt.Sprintf("%s, %s confidence", rec.DocumentType, rec.Confidence),
		Bytes:   moved,
	}
}

// admit applies the admission gate in fixed order and reports the first violation.
func admit(key string, rec *domain.Record) (domain.Outcome, bool) {
	if rec.OriginalFilename == "" {
		return domain.Outcome{Subject: key, Kind: domain.OutcomeSkipped, Reason: domain.ReasonMissingFilename}, false
	}
	if rec.Status != domain.StatusClassified {
		return domain.Outcome{
			Subject: rec.OriginalFilename,
			Kind:    domain.OutcomeSkipped,
			Reason:  domain.ReasonWrongStatus,
			Detail:  "status: " + rec.Status.String(),
		}, false
	}
	if detail, unresolved := rec.Fields().UnresolvedDetail(); unresolved {
		return domain.Outcome{
			Subject: rec.OriginalFilename,
			Kind:    domain.OutcomeSkipped,
			Reason:  domain.ReasonUnresolvedField,
			Detail:  detail,
		}, false
	}
	return domain.Outcome{}, true
}

func (uc *OrganizeDocumentsUseCase) rollback(ctx context.Context, name, destPath, reason string, cause error) domain.Outcome {
	if err := uc.docs.Restore(ctx, destPath, name); err != nil {
		uc.opts.Logger.ErrorContext(ctx, "organize_rollback_failed",
			"file", name,
			"target", destPath,
			"error", err,
		)
		return failed(name, reason, fmt.Errorf("%w; rollback: %v", cause, err))
	}
	return failed(name, reason, cause)
}
