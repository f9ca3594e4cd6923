package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
	"github.com/kirillkom/policy-sorter/internal/core/ports"
)

const StageReview = "review"

type ReviewRecordsUseCase struct {
	repo  ports.RecordRepository
	sheet ports.ReviewSheet
	opts  Options
}

func NewReviewRecordsUseCase(repo ports.RecordRepository, sheet ports.ReviewSheet, opts Options) *ReviewRecordsUseCase {
	return &ReviewRecordsUseCase{
		repo:  repo,
		sheet: sheet,
		opts:  opts.normalize(),
	}
}

// ExportPending writes every needs_review record to the review sheet at path.
func (uc *ReviewRecordsUseCase) ExportPending(ctx context.Context, path string) (int, error) {
	records, err := listRecords(ctx, uc.repo, uc.opts)
	if err != nil {
		return 0, err
	}
	pending := make([]*domain.Record, 0, len(records))
	for _, rec := range records {
		if rec.Status == domain.StatusNeedsReview {
			pending = append(pending, rec)
		}
	}
	if err := uc.sheet.Export(ctx, path, pending); err != nil {
		return 0, fmt.Errorf("export review sheet: %w", err)
	}
	return len(pending), nil
}

// ImportDecisions applies every decision found in the review sheet at path.
func (uc *ReviewRecordsUseCase) ImportDecisions(ctx context.Context, path string) (*domain.Report, error) {
	decisions, err := uc.sheet.Import(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("import review sheet: %w", err)
	}
	report := domain.NewReport(StageReview, RunIDFrom(ctx))
	for _, d := range decisions {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		outcome := uc.apply(ctx, d)
		report.Add(outcome)
		logOutcome(ctx, uc.opts.Logger, StageReview, outcome)
	}
	return report, nil
}

func (uc *ReviewRecordsUseCase) Approve(ctx context.Context, decision domain.ReviewDecision) (*domain.Report, error) {
	report := domain.NewReport(StageReview, RunIDFrom(ctx))
	outcome := uc.apply(ctx, decision)
	report.Add(outcome)
	logOutcome(ctx, uc.opts.Logger, StageReview, outcome)
	return report, nil
}

func (uc *ReviewRecordsUseCase) apply(ctx context.Context, d domain.ReviewDecision) domain.Outcome {
	subject := d.OriginalFilename
	key := domain.RecordKey(subject)

	exists, err := uc.repo.Exists(ctx, key)
	if err != nil {
		return failed(subject, domain.ReasonUnreadableRecord, err)
	}
	if !exists {
		return domain.Outcome{Subject: subject, Kind: domain.OutcomeFailed, Reason: domain.ReasonRecordNotFound}
	}
	rec, err := uc.repo.Load(ctx, key)
	if err != nil {
		return failed(subject, domain.ReasonUnreadableRecord, err)
	}
	if !d.Approve {
		return domain.Outcome{Subject: subject, Kind: domain.OutcomeSkipped, Reason: domain.ReasonNotApproved}
	}
	if rec.Status != domain.StatusNeedsReview {
		return domain.Outcome{
			Subject: subject,
			Kind:    domain.OutcomeSkipped,
			Reason:  domain.ReasonWrongStatus,
			Detail:  "status: " + rec.Status.String(),
		}
	}

	updated := rec.Clone()
	updated.ApplyFields(mergeFields(rec.Fields(), d.Fields))
	if err := updated.Advance(domain.StatusClassified); err != nil {
		return failed(subject, domain.ReasonWrongStatus, err)
	}
	if err := uc.repo.Save(ctx, key, updated); err != nil {
		return failed(subject, domain.ReasonPersistFailed, err)
	}
	publishTransition(ctx, uc.opts, updated, domain.StatusNeedsReview, uc.opts.Now())

	return domain.Outcome{Subject: subject, Kind: domain.OutcomeSucceeded, Target: updated.GeneratedFilename}
}

// mergeFields keeps the current value wherever the reviewer left a field blank.
func mergeFields(current, corrections domain.Fields) domain.Fields {
	pick := func(cur, next string) string {
		if strings.TrimSpace(next) == "" {
			return cur
		}
		return strings.TrimSpace(next)
	}
	return domain.Fields{
		Country:       pick(current.Country, corrections.Country),
		Insurer:       pick(current.Insurer, corrections.Insurer),
		InsuranceLine: pick(current.InsuranceLine, corrections.InsuranceLine),
		ProductName:   pick(current.ProductName, corrections.ProductName),
	}
}
