package localfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
)

func TestLedgerAppendAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), LedgerFilename)
	l := NewLedger(path)
	ctx := context.Background()

	if _, ok, err := l.Lookup(ctx, "a.pdf"); err != nil || ok {
		t.Fatalf("expected empty ledger, ok=%v err=%v", ok, err)
	}

	first := domain.Provenance{Filename: "a.pdf", SourceURL: "https://x/a", DownloadDate: "2026-01-01"}
	second := domain.Provenance{Filename: "a.pdf", SourceURL: "https://y/a", DownloadDate: "2026-02-01"}
	other := domain.Provenance{Filename: "b.pdf", SourceURL: "https://x/b", DownloadDate: "2026-01-01"}
	for _, p := range []domain.Provenance{first, other, second} {
		if err := l.Append(ctx, p); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, ok, err := l.Lookup(ctx, "a.pdf")
	if err != nil || !ok {
		t.Fatalf("Lookup() ok=%v err=%v", ok, err)
	}
	if got != second {
		t.Fatalf("expected latest entry %+v, got %+v", second, got)
	}

	doc, err := l.read()
	if err != nil {
		t.Fatalf("read() error = %v", err)
	}
	if len(doc.Documents) != 2 {
		t.Fatalf("expected replaced entry, got %d documents", len(doc.Documents))
	}
}

func TestLedgerCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), LedgerFilename)
	if err := os.WriteFile(path, []byte("documents: [::"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err := NewLedger(path).Lookup(context.Background(), "a.pdf")
	if !domain.IsKind(err, domain.ErrParse) {
		t.Fatalf("expected parse failure, got %v", err)
	}
}
