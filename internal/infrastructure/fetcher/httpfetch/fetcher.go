package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
	"github.com/kirillkom/policy-sorter/internal/infrastructure/resilience"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const DefaultUserAgent = "policyctl/1.0 (+policy document sorter)"

type Config struct {
	Timeout       time.Duration
	RatePerSecond float64
	UserAgent     string
}

// Fetcher downloads documents over HTTP. Requests share a cookie jar
// so insurer sites that set session cookies on the first hit keep working.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	guard     *resilience.Guard
	userAgent string
}

func New(cfg Config, guard *resilience.Guard) (*Fetcher, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout, Jar: jar},
		limiter:   rate.NewLimiter(limit, 1),
		guard:     guard,
		userAgent: cfg.UserAgent,
	}, nil
}

// Fetch returns the response body of a successful GET. The caller closes it.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, domain.WrapError(domain.ErrValidation, "fetch", fmt.Errorf("bad url %q", rawURL))
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "fetch rate limit", err)
	}

	var body io.ReadCloser
	call := func(ctx context.Context) error {
		rc, err := f.get(ctx, u.String())
		if err != nil {
			return err
		}
		body = rc
		return nil
	}
	if f.guard == nil {
		err = call(ctx)
	} else {
		err = f.guard.Do(ctx, u.Host, call, nil)
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, domain.WrapError(domain.ErrValidation, "build request", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/pdf,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "http get", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.Body, nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	_ = resp.Body.Close()
	statusErr := fmt.Errorf("status %d: %s", resp.StatusCode, snippet)
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, domain.WrapError(domain.ErrTemporary, "http get", statusErr)
	}
	return nil, domain.WrapError(domain.ErrValidation, "http get", statusErr)
}
