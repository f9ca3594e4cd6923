package nats

import (
	"errors"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
	"github.com/nats-io/nats.go"
)

// classify marks connection-level failures as temporary so the guard can retry them.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, nats.ErrDisconnected) ||
		errors.Is(err, nats.ErrConnectionReconnecting) {
		return domain.WrapError(domain.ErrTemporary, "nats publish", err)
	}
	if errors.Is(err, nats.ErrBadSubject) || errors.Is(err, nats.ErrMaxPayload) {
		return domain.WrapError(domain.ErrValidation, "nats publish", err)
	}
	return domain.WrapError(domain.ErrIO, "nats publish", err)
}
