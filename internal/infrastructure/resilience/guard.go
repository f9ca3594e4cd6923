package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
	"github.com/sony/gobreaker/v2"
)

// Verdict tells the guard what a failed call means for retry and breaker accounting.
type Verdict struct {
	Retry bool
	Count bool
}

type Judge func(err error) Verdict

// Guard runs remote calls behind one circuit breaker per target.
// Targets are free-form names, usually a host or a subject.
type Guard struct {
	cfg    Config
	logger *slog.Logger
	sleep  func(context.Context, time.Duration) error

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[struct{}]
}

func NewGuard(cfg Config, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		cfg:      cfg.normalize(),
		logger:   logger,
		sleep:    sleepContext,
		breakers: make(map[string]*gobreaker.CircuitBreaker[struct{}]),
	}
}

// Do calls fn until it succeeds, the judge refuses a retry, or attempts run out.
// An open breaker fails fast with an ErrTemporary.
func (g *Guard) Do(ctx context.Context, target string, fn func(context.Context) error, judge Judge) error {
	if fn == nil {
		return fmt.Errorf("resilience: nil call for %q", target)
	}
	target = strings.TrimSpace(target)
	if target == "" {
		target = "default"
	}
	if judge == nil {
		judge = KindJudge
	}

	if !g.cfg.BreakerEnabled {
		return g.attempt(ctx, target, fn, judge)
	}

	_, err := g.breaker(target, judge).Execute(func() (struct{}, error) {
		return struct{}{}, g.attempt(ctx, target, fn, judge)
	})
	if IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, "call "+target, err)
	}
	return err
}

func (g *Guard) attempt(ctx context.Context, target string, fn func(context.Context) error, judge Judge) error {
	wait := g.cfg.RetryInitialBackoff
	var err error
	for n := 1; n <= g.cfg.RetryMaxAttempts; n++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return err
			}
			return ctxErr
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if n == g.cfg.RetryMaxAttempts || !judge(err).Retry {
			return err
		}

		g.logger.WarnContext(ctx, "remote_call_retry",
			"target", target,
			"attempt", n,
			"max_attempts", g.cfg.RetryMaxAttempts,
			"backoff", wait.String(),
			"error", err,
		)
		if g.sleep(ctx, wait) != nil {
			return err
		}
		wait = min(time.Duration(float64(wait)*g.cfg.RetryMultiplier), g.cfg.RetryMaxBackoff)
	}
	return err
}

func (g *Guard) breaker(target string, judge Judge) *gobreaker.CircuitBreaker[struct{}] {
	g.mu.Lock()
	defer g.mu.Unlock()

	if cb, ok := g.breakers[target]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        target,
		MaxRequests: g.cfg.BreakerHalfOpenMaxCalls,
		Timeout:     g.cfg.BreakerOpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			if c.ConsecutiveFailures >= g.cfg.BreakerConsecutiveFailures {
				return true
			}
			if c.Requests < g.cfg.BreakerMinRequests {
				return false
			}
			return float64(c.TotalFailures)/float64(c.Requests) >= g.cfg.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !judge(err).Count
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.logger.Warn("circuit_breaker_state_change", "target", name, "from", from.String(), "to", to.String())
		},
	})
	g.breakers[target] = cb
	return cb
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// KindJudge retries temporary failures and ignores caller mistakes for breaker accounting.
func KindJudge(err error) Verdict {
	switch {
	case errors.Is(err, context.Canceled):
		return Verdict{}
	case domain.IsKind(err, domain.ErrTemporary):
		return Verdict{Retry: true, Count: true}
	case domain.IsKind(err, domain.ErrValidation), domain.IsKind(err, domain.ErrInputMissing):
		return Verdict{}
	default:
		return Verdict{Count: true}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
