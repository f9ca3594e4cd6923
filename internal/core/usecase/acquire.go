package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
	"github.com/kirillkom/policy-sorter/internal/core/ports"
)

const StageAcquire = "acquire"

type AcquireDocumentsUseCase struct {
	docs    ports.DocumentStore
	fetcher ports.Fetcher
	ledger  ports.ProvenanceLedger
	opts    Options
}

func NewAcquireDocumentsUseCase(
	docs ports.DocumentStore,
	fetcher ports.Fetcher,
	ledger ports.ProvenanceLedger,
	opts Options,
) *AcquireDocumentsUseCase {
	return &AcquireDocumentsUseCase{
		docs:    docs,
		fetcher: fetcher,
		ledger:  ledger,
		opts:    opts.normalize(),
	}
}

// Acquire downloads every locator in order. Failures are per item and never abort the batch.
func (uc *AcquireDocumentsUseCase) Acquire(ctx context.Context, urls []string) (*domain.Report, error) {
	report := domain.NewReport(StageAcquire, RunIDFrom(ctx))
	for _, raw := range urls {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		outcome := uc.acquireOne(ctx, raw)
		report.Add(outcome)
		logOutcome(ctx, uc.opts.Logger, StageAcquire, outcome)
	}
	return report, nil
}

func (uc *AcquireDocumentsUseCase) acquireOne(ctx context.Context, raw string) domain.Outcome {
	name, err := FilenameFromURL(raw)
	if err != nil {
		return domain.Outcome{Subject: raw, Kind: domain.OutcomeFailed, Reason: domain.ReasonBadLocator, Detail: err.Error()}
	}

	exists, err := uc.docs.Exists(ctx, name)
	if err != nil {
		return domain.Outcome{Subject: name, Kind: domain.OutcomeFailed, Reason: domain.ReasonFetchFailed, Detail: err.Error()}
	}
	if exists {
		return domain.Outcome{Subject: name, Kind: domain.OutcomeSkipped, Reason: domain.ReasonAlreadyPresent}
	}

	body, err := uc.fetcher.Fetch(ctx, raw)
	if err != nil {
		return domain.Outcome{Subject: name, Kind: domain.OutcomeFailed, Reason: domain.ReasonFetchFailed, Detail: err.Error()}
	}
	defer body.Close()

	n, err := uc.docs.Save(ctx, name, body)
	if err != nil {
		return domain.Outcome{Subject: name, Kind: domain.OutcomeFailed, Reason: domain.ReasonFetchFailed, Detail: fmt.Sprintf("save: %v", err)}
	}

	entry := domain.Provenance{
		Filename:     name,
		SourceURL:    raw,
		DownloadDate: uc.opts.Now().Format(domain.DateLayout),
	}
	if err := uc.ledger.Append(ctx, entry); err != nil {
		uc.opts.Logger.WarnContext(ctx, "provenance_append_failed", "file", name, "error", err)
	}

	return domain.Outcome{Subject: name, Kind: domain.OutcomeSucceeded, Target: raw, Bytes: n}
}

// FilenameFromURL derives the local name from the locator path, appending .pdf when absent.
func FilenameFromURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", domain.WrapError(domain.ErrValidation, "parse locator", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", domain.WrapError(domain.ErrValidation, "parse locator", fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
	base := path.Base(u.Path)
	if base == "" || base == "." || base == "/" || base == ".." || strings.ContainsAny(base, `/\`) {
		return "", domain.WrapError(domain.ErrValidation, "derive filename", errors.New("locator has no file name"))
	}
	if !strings.HasSuffix(base, ".pdf") {
		base += ".pdf"
	}
	return base, nil
}
