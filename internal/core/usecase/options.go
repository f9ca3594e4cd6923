package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
	"github.com/kirillkom/policy-sorter/internal/core/ports"
)

// Options carries the ambient collaborators shared by every stage.
type Options struct {
	Now    func() time.Time
	Logger *slog.Logger
	Events ports.EventPublisher
}

func (o Options) normalize() Options {
	out := o
	if out.Now == nil {
		out.Now = func() time.Time { return time.Now().UTC() }
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	if out.Events == nil {
		out.Events = noopPublisher{}
	}
	return out
}

type noopPublisher struct{}

func (noopPublisher) PublishTransition(context.Context, domain.LifecycleEvent) error { return nil }

type runIDKey struct{}

// WithRunID tags ctx with the batch run identifier used in reports and events.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

func RunIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(runIDKey{}).(string); ok {
		return v
	}
	return ""
}

func publishTransition(ctx context.Context, opts Options, rec *domain.Record, from domain.RecordStatus, at time.Time) {
	event := domain.LifecycleEvent{
		OriginalFilename:  rec.OriginalFilename,
		GeneratedFilename: rec.GeneratedFilename,
		From:              from,
		To:                rec.Status,
		At:                at.Format(domain.TimestampLayout),
		RunID:             RunIDFrom(ctx),
	}
	if err := opts.Events.PublishTransition(ctx, event); err != nil {
		opts.Logger.WarnContext(ctx, "lifecycle_event_publish_failed",
			"file", rec.OriginalFilename,
			"to", string(rec.Status),
			"error", err,
		)
	}
}

func logOutcome(ctx context.Context, logger *slog.Logger, stage string, o domain.Outcome) {
	attrs := []any{
		"stage", stage,
		"run_id", RunIDFrom(ctx),
		"file", o.Subject,
	}
	if o.Reason != "" {
		attrs = append(attrs, "reason", o.Reason)
	}
	if o.Detail != "" {
		attrs = append(attrs, "detail", o.Detail)
	}
	if o.Target != "" {
		attrs = append(attrs, "target", o.Target)
	}
	switch o.Kind {
	case domain.OutcomeSucceeded:
		if o.Bytes > 0 {
			attrs = append(attrs, "bytes", o.Bytes)
		}
		logger.InfoContext(ctx, "record_"+stage+"_succeeded", attrs...)
	case domain.OutcomeSkipped:
		logger.InfoContext(ctx, "record_"+stage+"_skipped", attrs...)
	default:
		logger.ErrorContext(ctx, "record_"+stage+"_failed", attrs...)
	}
}
