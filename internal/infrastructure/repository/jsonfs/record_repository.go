package jsonfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
)

const recordExt = ".json"

// RecordRepository stores one indented JSON document per record.
type RecordRepository struct {
	dir string
}

func NewRecordRepository(dir string) *RecordRepository {
	if dir == "" {
		dir = "./metadata"
	}
	return &RecordRepository{dir: dir}
}

func (r *RecordRepository) Dir() string {
	return r.dir
}

func (r *RecordRepository) path(key string) string {
	return filepath.Join(r.dir, filepath.Base(key)+recordExt)
}

// Keys lists record keys in name order. A missing collection is an input-missing error.
func (r *RecordRepository) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrInputMissing, "list records", fmt.Errorf("%s folder not found", r.dir))
		}
		return nil, domain.WrapError(domain.ErrIO, "list records", err)
	}
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, recordExt) {
			continue
		}
		keys = append(keys, name[:len(name)-len(recordExt)])
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *RecordRepository) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(r.path(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, domain.WrapError(domain.ErrIO, "stat record", err)
}

func (r *RecordRepository) Load(_ context.Context, key string) (*domain.Record, error) {
	raw, err := os.ReadFile(r.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrRecordNotFound, "load record", fmt.Errorf("%s", key))
		}
		return nil, domain.WrapError(domain.ErrIO, "load record", err)
	}
	rec, err := Decode(raw)
	if err != nil {
		return nil, domain.WrapError(domain.ErrParse, "decode record "+key, err)
	}
	return rec, nil
}

func (r *RecordRepository) Save(_ context.Context, key string, rec *domain.Record) error {
	raw, err := Encode(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", key, err)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return domain.WrapError(domain.ErrIO, "create metadata dir", err)
	}

	tmp, err := os.CreateTemp(r.dir, ".record-*")
	if err != nil {
		return domain.WrapError(domain.ErrIO, "create temp record", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return domain.WrapError(domain.ErrIO, "write record", err)
	}
	if err := tmp.Close(); err != nil {
		return domain.WrapError(domain.ErrIO, "close record", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return domain.WrapError(domain.ErrIO, "chmod record", err)
	}
	if err := os.Rename(tmp.Name(), r.path(key)); err != nil {
		return domain.WrapError(domain.ErrIO, "commit record", err)
	}
	return nil
}

// Encode writes the owned fields followed by any extra keys, two-space indented.
func Encode(rec *domain.Record) ([]byte, error) {
	owned, err := marshal(rec)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]json.RawMessage)
	if err := json.Unmarshal(owned, &merged); err != nil {
		return nil, err
	}
	for _, k := range rec.Absent {
		if string(merged[k]) == `""` {
			delete(merged, k)
		}
	}
	for k, v := range rec.Extra {
		if _, taken := merged[k]; taken {
			continue
		}
		raw, err := marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode extra key %q: %w", k, err)
		}
		merged[k] = raw
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	keys := orderedKeys(merged)
	for i, k := range keys {
		name, _ := marshal(k)
		fmt.Fprintf(&buf, "  %s: ", name)
		if err := json.Indent(&buf, merged[k], "  ", "  "); err != nil {
			return nil, err
		}
		if i < len(keys)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// marshal keeps characters such as '&' readable instead of \u escapes.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode reads a record and keeps keys it does not own in Extra. Numbers in
// extra keys stay json.Number so they are written back digit for digit.
func Decode(raw []byte) (*domain.Record, error) {
	var rec domain.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	var all map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&all); err != nil {
		return nil, err
	}
	for _, k := range ownedKeys {
		// organized_date is omitted while empty anyway.
		if _, ok := all[k]; !ok && k != "organized_date" {
			rec.Absent = append(rec.Absent, k)
		}
		delete(all, k)
	}
	if len(all) > 0 {
		rec.Extra = all
	}
	return &rec, nil
}

var ownedKeys = []string{
	"original_filename",
	"generated_filename",
	"country",
	"insurer",
	"insurance_line",
	"product_name",
	"document_type",
	"source_url",
	"download_date",
	"confidence",
	"status",
	"created_at",
	"organized_date",
}

// orderedKeys keeps the owned keys in their canonical order and sorts the rest after them.
func orderedKeys(m map[string]json.RawMessage) []string {
	out := make([]string, 0, len(m))
	seen := make(map[string]bool, len(ownedKeys))
	for _, k := range ownedKeys {
		seen[k] = true
		if _, ok := m[k]; ok {
			out = append(out, k)
		}
	}
	extra := make([]string, 0)
	for k := range m {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
