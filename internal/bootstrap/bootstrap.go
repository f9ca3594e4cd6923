package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kirillkom/policy-sorter/internal/config"
	"github.com/kirillkom/policy-sorter/internal/core/domain"
	"github.com/kirillkom/policy-sorter/internal/core/ports"
	"github.com/kirillkom/policy-sorter/internal/core/usecase"
	"github.com/kirillkom/policy-sorter/internal/infrastructure/classifier/keyword"
	"github.com/kirillkom/policy-sorter/internal/infrastructure/extractor/fixture"
	"github.com/kirillkom/policy-sorter/internal/infrastructure/extractor/pdftext"
	"github.com/kirillkom/policy-sorter/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/policy-sorter/internal/infrastructure/fetcher/httpfetch"
	"github.com/kirillkom/policy-sorter/internal/infrastructure/lock"
	"github.com/kirillkom/policy-sorter/internal/infrastructure/queue/nats"
	"github.com/kirillkom/policy-sorter/internal/infrastructure/repository/jsonfs"
	"github.com/kirillkom/policy-sorter/internal/infrastructure/resilience"
	"github.com/kirillkom/policy-sorter/internal/infrastructure/review/xlsx"
	"github.com/kirillkom/policy-sorter/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/policy-sorter/internal/observability/metrics"
)

const sidecarMaxBytes = 1 << 20

type App struct {
	Config config.Config
	Logger *slog.Logger

	Records ports.RecordRepository

	AcquireUC  ports.DocumentAcquirer
	ClassifyUC ports.DocumentClassifierStage
	ReviewUC   ports.RecordReviewer
	OrganizeUC ports.DocumentOrganizer
	ListUC     ports.RecordReader

	metrics *metrics.BatchMetrics
	lock    *lock.RunLock
	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	repo := jsonfs.NewRecordRepository(cfg.MetadataDir)
	docs := localfs.New(cfg.RawDocumentsDir)
	ledger := localfs.NewLedger(filepath.Join(cfg.RawDocumentsDir, localfs.LedgerFilename))

	var primary ports.TextExtractor
	switch cfg.TextExtractor {
	case config.ExtractorPDF:
		primary = pdftext.NewExtractor(docs, cfg.ExtractMaxChars)
	case config.ExtractorFixture:
		primary = fixture.NewExtractor(fixture.Samples)
	default:
		return nil, domain.WrapError(domain.ErrValidation, "select text extractor", fmt.Errorf("unknown TEXT_EXTRACTOR %q", cfg.TextExtractor))
	}
	extractor := plaintext.NewExtractor(docs, primary, sidecarMaxBytes)
	classifier := keyword.New()

	fetchPolicy := resilience.DefaultConfig()
	fetchPolicy.RetryMaxAttempts = cfg.FetchRetryAttempts
	fetchPolicy.BreakerEnabled = cfg.FetchBreakerEnabled
	fetcher, err := httpfetch.New(httpfetch.Config{
		Timeout:       cfg.FetchTimeout,
		RatePerSecond: cfg.FetchRatePerSecond,
		UserAgent:     cfg.FetchUserAgent,
	}, resilience.NewGuard(fetchPolicy, logger))
	if err != nil {
		return nil, fmt.Errorf("init fetcher: %w", err)
	}

	closers := make([]func(), 0, 1)
	var events ports.EventPublisher
	if cfg.NATSURL != "" {
		publisher, err := nats.Connect(cfg.NATSURL, nats.Options{
			SubjectPrefix: cfg.NATSSubjectPrefix,
			Guard:         resilience.NewGuard(resilience.DefaultConfig(), logger),
			Logger:        logger,
		})
		if err != nil {
			logger.WarnContext(ctx, "lifecycle_events_disabled", "url", cfg.NATSURL, "error", err)
		} else {
			events = publisher
			closers = append(closers, publisher.Close)
		}
	}

	opts := usecase.Options{Logger: logger, Events: events}
	sheet := xlsx.New(xlsx.WithLineChoices(keyword.Labels(keyword.DefaultLines)))

	return &App{
		Config:  cfg,
		Logger:  logger,
		Records: repo,

		AcquireUC:  usecase.NewAcquireDocumentsUseCase(docs, fetcher, ledger, opts),
		ClassifyUC: usecase.NewClassifyDocumentsUseCase(repo, docs, ledger, extractor, classifier, opts),
		ReviewUC:   usecase.NewReviewRecordsUseCase(repo, sheet, opts),
		OrganizeUC: usecase.NewOrganizeDocumentsUseCase(repo, docs, cfg.PoliciesDir, opts),
		ListUC:     usecase.NewListRecordsUseCase(repo, opts),

		metrics: metrics.NewBatchMetrics("policyctl"),
		lock:    lock.New(cfg.MetadataDir),
		closeFn: func() {
			for _, c := range closers {
				c()
			}
		},
	}, nil
}

// Lock takes the run lock for stages that mutate the collection. Only stages
// that may start a collection pass create; the rest need it to exist already.
func (a *App) Lock(create bool) error {
	if create {
		if err := os.MkdirAll(a.Config.MetadataDir, 0o755); err != nil {
			return domain.WrapError(domain.ErrIO, "create metadata dir", err)
		}
	}
	if err := a.lock.Acquire(); err != nil {
		return err
	}
	prev := a.closeFn
	a.closeFn = func() {
		if err := a.lock.Release(); err != nil {
			a.Logger.Warn("run_lock_release_failed", "path", a.lock.Path(), "error", err)
		}
		if prev != nil {
			prev()
		}
	}
	return nil
}

// ObserveReport records a finished stage and rewrites the metrics textfile when configured.
func (a *App) ObserveReport(report *domain.Report, elapsed time.Duration) {
	a.metrics.ObserveReport(report, elapsed, time.Now())
	if a.Config.MetricsTextfile == "" {
		return
	}
	if err := a.metrics.WriteTextfile(a.Config.MetricsTextfile); err != nil {
		a.Logger.Warn("metrics_write_failed", "path", a.Config.MetricsTextfile, "error", err)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
