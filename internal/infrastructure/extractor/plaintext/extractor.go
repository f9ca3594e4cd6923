package plaintext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
	"github.com/kirillkom/policy-sorter/internal/core/ports"
)

// Extractor reads externally supplied text for a document from a sidecar
// file next to it ("policy.pdf" -> "policy.txt"). When no sidecar exists it
// defers to the fallback extractor, if any.
type Extractor struct {
	docs     ports.DocumentStore
	fallback ports.TextExtractor
	maxBytes int64
}

func NewExtractor(docs ports.DocumentStore, fallback ports.TextExtractor, maxBytes int64) *Extractor {
	return &Extractor{docs: docs, fallback: fallback, maxBytes: maxBytes}
}

func (e *Extractor) Extract(ctx context.Context, name string) (string, error) {
	sidecar := e.docs.Path(domain.RecordKey(name) + ".txt")
	f, err := os.Open(sidecar)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && e.fallback != nil {
			return e.fallback.Extract(ctx, name)
		}
		return "", domain.WrapError(domain.ErrInputMissing, "open text sidecar", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if e.maxBytes > 0 {
		reader = io.LimitReader(f, e.maxBytes)
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read text sidecar: %w", err)
	}
	if e.maxBytes > 0 && int64(len(raw)) == e.maxBytes {
		raw = trimPartialRune(raw)
	}

	if !utf8.Valid(raw) {
		return "", domain.WrapError(domain.ErrParse, "read text sidecar", fmt.Errorf("not utf-8 text: %s", filepath.Base(sidecar)))
	}

	return strings.TrimSpace(string(raw)), nil
}

// trimPartialRune drops a multi-byte rune cut in half by the read limit.
func trimPartialRune(raw []byte) []byte {
	for i := 0; i < utf8.UTFMax-1 && len(raw) > 0; i++ {
		r, size := utf8.DecodeLastRune(raw)
		if r != utf8.RuneError || size != 1 {
			break
		}
		raw = raw[:len(raw)-1]
	}
	return raw
}
