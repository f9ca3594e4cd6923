package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
)

var fixedNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func testOptions(events *eventRecorder) Options {
	opts := Options{
		Now:    func() time.Time { return fixedNow },
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if events != nil {
		opts.Events = events
	}
	return opts
}

type memRepo struct {
	records map[string]*domain.Record
	broken  map[string]bool
	keysErr error
	saveErr error
	saves   int
}

func newMemRepo(records ...*domain.Record) *memRepo {
	r := &memRepo{records: map[string]*domain.Record{}, broken: map[string]bool{}}
	for _, rec := range records {
		r.records[domain.RecordKey(rec.OriginalFilename)] = rec.Clone()
	}
	return r
}

func (r *memRepo) Keys(context.Context) ([]string, error) {
	if r.keysErr != nil {
		return nil, r.keysErr
	}
	keys := make([]string, 0, len(r.records)+len(r.broken))
	for k := range r.records {
		keys = append(keys, k)
	}
	for k := range r.broken {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *memRepo) Exists(_ context.Context, key string) (bool, error) {
	_, ok := r.records[key]
	return ok || r.broken[key], nil
}

func (r *memRepo) Load(_ context.Context, key string) (*domain.Record, error) {
	if r.broken[key] {
		return nil, domain.WrapError(domain.ErrParse, "decode record "+key, errors.New("unexpected end of JSON input"))
	}
	rec, ok := r.records[key]
	if !ok {
		return nil, domain.WrapError(domain.ErrRecordNotFound, "load record", errors.New(key))
	}
	return rec.Clone(), nil
}

func (r *memRepo) Save(_ context.Context, key string, rec *domain.Record) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.records[key] = rec.Clone()
	return nil
}

// memDocs keeps raw documents by name and relocated documents by full path.
type memDocs struct {
	raw     map[string][]byte
	placed  map[string][]byte
	listErr error
}

func newMemDocs(names ...string) *memDocs {
	d := &memDocs{raw: map[string][]byte{}, placed: map[string][]byte{}}
	for _, n := range names {
		d.raw[n] = []byte("%PDF " + n)
	}
	return d
}

func (d *memDocs) List(context.Context) ([]string, error) {
	if d.listErr != nil {
		return nil, d.listErr
	}
	names := make([]string, 0, len(d.raw))
	for n := range d.raw {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (d *memDocs) Exists(_ context.Context, name string) (bool, error) {
	_, ok := d.raw[name]
	return ok, nil
}

func (d *memDocs) Path(name string) string {
	return filepath.Join("raw", name)
}

func (d *memDocs) Save(_ context.Context, name string, r io.Reader) (int64, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return 0, err
	}
	d.raw[name] = buf.Bytes()
	return n, nil
}

func (d *memDocs) Relocate(_ context.Context, name, dstDir, dstName string) (int64, error) {
	body, ok := d.raw[name]
	if !ok {
		return 0, domain.WrapError(domain.ErrInputMissing, "relocate", fmt.Errorf("%s not found", name))
	}
	dst := filepath.Join(dstDir, dstName)
	if _, taken := d.placed[dst]; taken {
		return 0, domain.WrapError(domain.ErrIO, "relocate", fmt.Errorf("%s: %w", dst, fs.ErrExist))
	}
	d.placed[dst] = body
	delete(d.raw, name)
	return int64(len(body)), nil
}

func (d *memDocs) Restore(_ context.Context, dstPath, name string) error {
	body, ok := d.placed[dstPath]
	if !ok {
		return fs.ErrNotExist
	}
	d.raw[name] = body
	delete(d.placed, dstPath)
	return nil
}

type memLedger struct {
	entries   map[string]domain.Provenance
	lookupErr error
}

func newMemLedger() *memLedger {
	return &memLedger{entries: map[string]domain.Provenance{}}
}

func (l *memLedger) Lookup(_ context.Context, name string) (domain.Provenance, bool, error) {
	if l.lookupErr != nil {
		return domain.Provenance{}, false, l.lookupErr
	}
	p, ok := l.entries[name]
	return p, ok, nil
}

func (l *memLedger) Append(_ context.Context, p domain.Provenance) error {
	l.entries[p.Filename] = p
	return nil
}

type textByName struct {
	texts map[string]string
	errs  map[string]error
}

func (e *textByName) Extract(_ context.Context, name string) (string, error) {
	if err := e.errs[name]; err != nil {
		return "", err
	}
	return e.texts[name], nil
}

// stubClassifier resolves fields from the first line of the text: "Country|Insurer|Line|Product".
type stubClassifier struct{}

func (stubClassifier) Classify(_ context.Context, text string) (domain.Classification, error) {
	first, _, _ := strings.Cut(text, "\n")
	parts := strings.Split(first, "|")
	for len(parts) < 4 {
		parts = append(parts, domain.Unknown)
	}
	return domain.NewClassification(domain.Fields{
		Country:       parts[0],
		Insurer:       parts[1],
		InsuranceLine: parts[2],
		ProductName:   parts[3],
	}), nil
}

type eventRecorder struct {
	events []domain.LifecycleEvent
	err    error
}

func (r *eventRecorder) PublishTransition(_ context.Context, e domain.LifecycleEvent) error {
	r.events = append(r.events, e)
	return r.err
}

type fakeFetcher struct {
	bodies map[string]string
	calls  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (io.ReadCloser, error) {
	f.calls = append(f.calls, url)
	body, ok := f.bodies[url]
	if !ok {
		return nil, domain.WrapError(domain.ErrValidation, "http get", errors.New("status 404"))
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func classifiedRecord(filename string, f domain.Fields) *domain.Record {
	rec := domain.NewRecord(filename, domain.NewClassification(f), domain.Provenance{}, fixedNow.AddDate(0, 0, -1))
	rec.Status = domain.StatusClassified
	return rec
}
