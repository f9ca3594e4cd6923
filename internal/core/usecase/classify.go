package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
	"github.com/kirillkom/policy-sorter/internal/core/ports"
)

const StageClassify = "classify"

type ClassifyDocumentsUseCase struct {
	repo       ports.RecordRepository
	docs       ports.DocumentStore
	ledger     ports.ProvenanceLedger
	extractor  ports.TextExtractor
	classifier ports.DocumentClassifier
	opts       Options
}

func NewClassifyDocumentsUseCase(
	repo ports.RecordRepository,
	docs ports.DocumentStore,
	ledger ports.ProvenanceLedger,
	extractor ports.TextExtractor,
	classifier ports.DocumentClassifier,
	opts Options,
) *ClassifyDocumentsUseCase {
	return &ClassifyDocumentsUseCase{
		repo:       repo,
		docs:       docs,
		ledger:     ledger,
		extractor:  extractor,
		classifier: classifier,
		opts:       opts.normalize(),
	}
}

// ClassifyAll writes a needs_review record for every raw document that has none yet.
// A missing raw collection halts the stage; everything else is reported per document.
func (uc *ClassifyDocumentsUseCase) ClassifyAll(ctx context.Context) (*domain.Report, error) {
	names, err := uc.docs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list raw documents: %w", err)
	}

	report := domain.NewReport(StageClassify, RunIDFrom(ctx))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		outcome := uc.classifyOne(ctx, name)
		report.Add(outcome)
		logOutcome(ctx, uc.opts.Logger, StageClassify, outcome)
	}
	return report, nil
}

func (uc *ClassifyDocumentsUseCase) classifyOne(ctx context.Context, name string) domain.Outcome {
	key := domain.RecordKey(name)

	// An existing record may already be past needs_review; rewriting it would regress status.
	exists, err := uc.repo.Exists(ctx, key)
	if err != nil {
		return failed(name, domain.ReasonPersistFailed, err)
	}
	if exists {
		return domain.Outcome{Subject: name, Kind: domain.OutcomeSkipped, Reason: domain.ReasonAlreadyRecorded}
	}

	text, err := uc.extractText(ctx, name)
	if err != nil {
		return failed(name, domain.ReasonExtractFailed, err)
	}

	cls, err := uc.classifier.Classify(ctx, text)
	if err != nil {
		return failed(name, domain.ReasonExtractFailed, fmt.Errorf("classify document: %w", err))
	}

	prov, _, err := uc.ledger.Lookup(ctx, name)
	if err != nil {
		uc.opts.Logger.WarnContext(ctx, "provenance_lookup_failed", "file", name, "error", err)
		prov = domain.Provenance{}
	}

	now := uc.opts.Now()
	rec := domain.NewRecord(name, cls, prov, now)
	if err := uc.repo.Save(ctx, key, rec); err != nil {
		return failed(name, domain.ReasonPersistFailed, err)
	}
	publishTransition(ctx, uc.opts, rec, "", now)

	return domain.Outcome{
		Subject: name,
		Kind:    domain.OutcomeSucceeded,
		Target:  rec.GeneratedFilename,
		Detail:  fmt.Sprintf("%s / %s / %s / %s (%s)", cls.Country, cls.Insurer, cls.InsuranceLine, cls.ProductName, cls.Confidence),
	}
}

func (uc *ClassifyDocumentsUseCase) extractText(ctx context.Context, name string) (string, error) {
	text, err := uc.extractor.Extract(ctx, name)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	if text == "" {
		return "", domain.WrapError(domain.ErrParse, "extract text", errors.New("empty extracted text"))
	}
	return text, nil
}

func failed(subject, reason string, err error) domain.Outcome {
	return domain.Outcome{Subject: subject, Kind: domain.OutcomeFailed, Reason: reason, Detail: err.Error()}
}
