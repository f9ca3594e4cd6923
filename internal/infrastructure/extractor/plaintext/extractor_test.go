package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
	"github.com/kirillkom/policy-sorter/internal/infrastructure/storage/localfs"
)

type staticExtractor struct {
	text  string
	calls int
}

func (s *staticExtractor) Extract(context.Context, string) (string, error) {
	s.calls++
	return s.text, nil
}

func TestExtractPrefersSidecar(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "policy.txt"), []byte("  AMI Insurance\nMotor  \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fallback := &staticExtractor{text: "from pdf"}

	text, err := NewExtractor(localfs.New(dir), fallback, 0).Extract(context.Background(), "policy.pdf")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "AMI Insurance\nMotor" {
		t.Fatalf("unexpected text %q", text)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback must not run when a sidecar exists")
	}
}

func TestExtractFallsBackWithoutSidecar(t *testing.T) {
	fallback := &staticExtractor{text: "from pdf"}
	text, err := NewExtractor(localfs.New(t.TempDir()), fallback, 0).Extract(context.Background(), "policy.pdf")
	if err != nil || text != "from pdf" {
		t.Fatalf("expected fallback text, got %q, %v", text, err)
	}
}

func TestExtractWithoutFallback(t *testing.T) {
	_, err := NewExtractor(localfs.New(t.TempDir()), nil, 0).Extract(context.Background(), "policy.pdf")
	if !domain.IsKind(err, domain.ErrInputMissing) {
		t.Fatalf("expected input missing, got %v", err)
	}
}

func TestExtractTrimsCutRune(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "m.txt"), []byte("abé"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	text, err := NewExtractor(localfs.New(dir), nil, 3).Extract(context.Background(), "m.pdf")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "ab" {
		t.Fatalf("expected cut rune dropped, got %q", text)
	}
}

func TestExtractRejectsBinary(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte{0xff, 0xfe, 0x00, 'a'}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := NewExtractor(localfs.New(dir), nil, 0).Extract(context.Background(), "b.pdf")
	if !domain.IsKind(err, domain.ErrParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
}
