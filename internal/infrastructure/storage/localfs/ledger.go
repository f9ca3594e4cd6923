package localfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
)

const LedgerFilename = "sources.yaml"

// Ledger records the origin of acquired documents in a YAML file.
type Ledger struct {
	path string
}

type ledgerFile struct {
	Documents []domain.Provenance `yaml:"documents"`
}

func NewLedger(path string) *Ledger {
	return &Ledger{path: path}
}

func (l *Ledger) Lookup(_ context.Context, filename string) (domain.Provenance, bool, error) {
	doc, err := l.read()
	if err != nil {
		return domain.Provenance{}, false, err
	}
	for i := len(doc.Documents) - 1; i >= 0; i-- {
		if doc.Documents[i].Filename == filename {
			return doc.Documents[i], true, nil
		}
	}
	return domain.Provenance{}, false, nil
}

// Append adds entry, replacing an earlier entry for the same file.
func (l *Ledger) Append(_ context.Context, entry domain.Provenance) error {
	doc, err := l.read()
	if err != nil {
		return err
	}
	kept := doc.Documents[:0]
	for _, p := range doc.Documents {
		if p.Filename != entry.Filename {
			kept = append(kept, p)
		}
	}
	doc.Documents = append(kept, entry)
	return l.write(doc)
}

func (l *Ledger) read() (ledgerFile, error) {
	var doc ledgerFile
	raw, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return doc, nil
		}
		return doc, domain.WrapError(domain.ErrIO, "read provenance ledger", err)
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return doc, domain.WrapError(domain.ErrParse, "decode provenance ledger", err)
	}
	return doc, nil
}

func (l *Ledger) write(doc ledgerFile) error {
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode provenance ledger: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return domain.WrapError(domain.ErrIO, "create ledger dir", err)
	}
	return writeFileAtomic(l.path, raw)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return domain.WrapError(domain.ErrIO, "create temp file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return domain.WrapError(domain.ErrIO, "write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return domain.WrapError(domain.ErrIO, "close temp file", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return domain.WrapError(domain.ErrIO, "commit file", err)
	}
	return nil
}
