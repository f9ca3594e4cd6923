package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func sampleReport() *domain.Report {
	r := domain.NewReport("organize", "run-1")
	r.Add(domain.Outcome{Subject: "a.pdf", Kind: domain.OutcomeSucceeded, Bytes: 1024})
	r.Add(domain.Outcome{Subject: "b.pdf", Kind: domain.OutcomeSkipped, Reason: domain.ReasonUnresolvedField})
	r.Add(domain.Outcome{Subject: "c.pdf", Kind: domain.OutcomeSkipped, Reason: domain.ReasonWrongStatus})
	r.Add(domain.Outcome{Subject: "d.pdf", Kind: domain.OutcomeFailed, Reason: domain.ReasonSourceMissing})
	return r
}

func TestObserveReport(t *testing.T) {
	m := NewBatchMetrics("policyctl")
	m.ObserveReport(sampleReport(), 1500*time.Millisecond, time.Unix(1700000000, 0))

	if got := testutil.ToFloat64(m.recordsTotal.WithLabelValues("organize", "skipped")); got != 2 {
		t.Fatalf("skipped = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.recordsTotal.WithLabelValues("organize", "failed")); got != 1 {
		t.Fatalf("failed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.bytesTotal.WithLabelValues("organize")); got != 1024 {
		t.Fatalf("bytes = %v, want 1024", got)
	}
	if got := testutil.ToFloat64(m.stageDuration.WithLabelValues("organize")); got != 1.5 {
		t.Fatalf("duration = %v, want 1.5", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := NewBatchMetrics("policyctl")
	m.ObserveReport(sampleReport(), time.Second, time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "textfile", "policyctl.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(raw)
	want := `policy_sorter_records_total{outcome="succeeded",service="policyctl",stage="organize"} 1`
	if !strings.Contains(text, want) {
		t.Fatalf("missing %q in:\n%s", want, text)
	}
}
