package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
)

type cliTestEnv struct {
	rawDir      string
	metadataDir string
	policiesDir string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	base := t.TempDir()
	env := &cliTestEnv{
		rawDir:      filepath.Join(base, "raw_documents"),
		metadataDir: filepath.Join(base, "metadata"),
		policiesDir: filepath.Join(base, "policies"),
	}
	t.Setenv("RAW_DOCUMENTS_DIR", env.rawDir)
	t.Setenv("METADATA_DIR", env.metadataDir)
	t.Setenv("POLICIES_DIR", env.policiesDir)
	t.Setenv("TEXT_EXTRACTOR", "fixture")
	t.Setenv("NATS_URL", "")
	t.Setenv("METRICS_TEXTFILE", "")
	t.Setenv("SOURCE_MANIFEST", "")

	if err := os.MkdirAll(env.rawDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	return env
}

func (e *cliTestEnv) addDocument(t *testing.T, name, text string) {
	t.Helper()
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if err := os.WriteFile(filepath.Join(e.rawDir, name), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	if err := os.WriteFile(filepath.Join(e.rawDir, base+".txt"), []byte(text), 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestPipelineThroughCLI(t *testing.T) {
	env := setupCLITestEnv(t)
	env.addDocument(t, "ami.pdf", "AMI Insurance\nCar Insurance Policy Document\nNew Zealand motor cover.")
	env.addDocument(t, "mystery.pdf", "Policy terms for an unnamed provider\nNothing else to see.")

	out, err := runCLI(t, "classify")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if !strings.Contains(out, "classify: 2 succeeded, 0 skipped, 0 failed") {
		t.Fatalf("unexpected classify output:\n%s", out)
	}

	if _, err := runCLI(t, "review", "approve", "ami.pdf"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := runCLI(t, "review", "approve", "mystery.pdf"); err != nil {
		t.Fatalf("approve: %v", err)
	}

	out, err = runCLI(t, "organize")
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	if !strings.Contains(out, "organize: 1 succeeded, 1 skipped, 0 failed") {
		t.Fatalf("unexpected organize output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(env.rawDir, "mystery.pdf")); err != nil {
		t.Fatalf("unresolved document must stay in raw: %v", err)
	}

	out, err = runCLI(t, "--json", "status", "--status", "organized")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var records []domain.Record
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("decode status json: %v\n%s", err, out)
	}
	if len(records) != 1 || records[0].OriginalFilename != "ami.pdf" {
		t.Fatalf("unexpected organized records %+v", records)
	}
	dest := filepath.Join(env.policiesDir, "New_Zealand", "AMI", "Motor")
	if _, err := os.Stat(filepath.Join(dest, "AMI_Insurance", records[0].GeneratedFilename)); err != nil {
		t.Fatalf("organized file missing: %v", err)
	}
}

func TestStatusRejectsUnknownFilter(t *testing.T) {
	setupCLITestEnv(t)
	if _, err := runCLI(t, "status", "--status", "archived"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestAcquireRequiresURLs(t *testing.T) {
	setupCLITestEnv(t)
	if _, err := runCLI(t, "acquire"); err == nil {
		t.Fatalf("expected error without urls")
	}
}

func TestReviewExportWritesSheet(t *testing.T) {
	env := setupCLITestEnv(t)
	env.addDocument(t, "ami.pdf", "AMI Insurance\nCar Insurance Policy Document\nNew Zealand motor cover.")
	if _, err := runCLI(t, "classify"); err != nil {
		t.Fatalf("classify: %v", err)
	}

	out, err := runCLI(t, "review", "export")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "exported 1 record(s)") {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := os.Stat(filepath.Join(env.metadataDir, "review.xlsx")); err != nil {
		t.Fatalf("sheet missing: %v", err)
	}
}

func TestOrganizeReportsMissingMetadataDir(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := filepath.Join(filepath.Dir(env.metadataDir), "metdata")

	out, err := runCLI(t, "--metadata-dir", missing, "organize")
	if !domain.IsKind(err, domain.ErrInputMissing) {
		t.Fatalf("expected ErrInputMissing, got %v (output %q)", err, out)
	}
	if code := mapErrorToExitCode(err); code != exitNoInput {
		t.Fatalf("exit code = %d, want %d", code, exitNoInput)
	}
	if !strings.Contains(err.Error(), "folder not found") {
		t.Fatalf("error should name the missing folder: %v", err)
	}
	if _, statErr := os.Stat(missing); !os.IsNotExist(statErr) {
		t.Fatalf("organize must not create %s, stat err = %v", missing, statErr)
	}
}

func TestClassifyStartsMetadataDir(t *testing.T) {
	env := setupCLITestEnv(t)
	env.addDocument(t, "ami.pdf", "AMI Insurance\nCar Insurance Policy Document\nNew Zealand motor cover.")

	if _, err := runCLI(t, "classify"); err != nil {
		t.Fatalf("classify: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.metadataDir, "ami.json")); err != nil {
		t.Fatalf("record missing: %v", err)
	}
}
