package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
	"github.com/kirillkom/policy-sorter/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
)

const DefaultSubjectPrefix = "policies.lifecycle"

// Publisher announces record status transitions on <prefix>.<status>.
type Publisher struct {
	conn   *nats.Conn
	prefix string
	guard  *resilience.Guard
}

type Options struct {
	SubjectPrefix  string
	ConnectTimeout time.Duration
	ReconnectWait  time.Duration
	MaxReconnects  int
	Guard          *resilience.Guard
	Logger         *slog.Logger
}

func Connect(url string, options Options) (*Publisher, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 5
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(
		url,
		nats.Name("policyctl"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "connect nats", err)
	}
	return &Publisher{
		conn:   conn,
		prefix: subjectPrefix(options.SubjectPrefix),
		guard:  options.Guard,
	}, nil
}

// Close flushes pending events before closing the connection.
func (p *Publisher) Close() {
	if p.conn == nil {
		return
	}
	_ = p.conn.FlushTimeout(2 * time.Second)
	p.conn.Close()
}

func (p *Publisher) PublishTransition(ctx context.Context, event domain.LifecycleEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode lifecycle event: %w", err)
	}
	subject := Subject(p.prefix, event.To)

	call := func(context.Context) error {
		if err := p.conn.Publish(subject, payload); err != nil {
			return classify(err)
		}
		return nil
	}
	if p.guard == nil {
		return call(ctx)
	}
	return p.guard.Do(ctx, "nats:"+p.prefix, call, nil)
}

// Subject returns the subject a transition into status is published on.
func Subject(prefix string, status domain.RecordStatus) string {
	return subjectPrefix(prefix) + "." + status.String()
}

func subjectPrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		return DefaultSubjectPrefix
	}
	return prefix
}
