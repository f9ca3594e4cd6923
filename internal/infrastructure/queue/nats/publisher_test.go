package nats

import (
	"errors"
	"testing"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
	"github.com/nats-io/nats.go"
)

func TestSubject(t *testing.T) {
	tests := []struct {
		prefix string
		status domain.RecordStatus
		want   string
	}{
		{prefix: "", status: domain.StatusClassified, want: "policies.lifecycle.classified"},
		{prefix: "ops.docs.", status: domain.StatusOrganized, want: "ops.docs.organized"},
		{prefix: "  acme ", status: domain.StatusNeedsReview, want: "acme.needs_review"},
	}
	for _, tc := range tests {
		if got := Subject(tc.prefix, tc.status); got != tc.want {
			t.Fatalf("Subject(%q, %q) = %q, want %q", tc.prefix, tc.status, got, tc.want)
		}
	}
}

func TestClassify(t *testing.T) {
	if err := classify(nats.ErrConnectionClosed); !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("closed connection should be temporary, got %v", err)
	}
	if err := classify(nats.ErrBadSubject); !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("bad subject should be validation, got %v", err)
	}
	if err := classify(errors.New("boom")); !domain.IsKind(err, domain.ErrIO) {
		t.Fatalf("unknown error should be io, got %v", err)
	}
	if !errors.Is(classify(nats.ErrTimeout), nats.ErrTimeout) {
		t.Fatalf("cause must stay visible")
	}
}
