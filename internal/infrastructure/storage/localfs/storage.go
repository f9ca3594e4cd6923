package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
)

// Storage is the flat raw document collection on local disk.
type Storage struct {
	basePath string
}

func New(basePath string) *Storage {
	if basePath == "" {
		basePath = "./raw_documents"
	}
	return &Storage{basePath: basePath}
}

func (s *Storage) Path(name string) string {
	return filepath.Join(s.basePath, filepath.Base(name))
}

// List returns the PDF file names in the collection, sorted.
func (s *Storage) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrInputMissing, "list documents", fmt.Errorf("%s folder not found", s.basePath))
		}
		return nil, domain.WrapError(domain.ErrIO, "list documents", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			continue
		}
		info, err := os.Stat(filepath.Join(s.basePath, entry.Name()))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *Storage) Exists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(s.Path(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, domain.WrapError(domain.ErrIO, "stat document", err)
}

// Save writes data under name through a temporary file so a failed transfer
// never leaves a partial document behind.
func (s *Storage) Save(_ context.Context, name string, data io.Reader) (int64, error) {
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return 0, domain.WrapError(domain.ErrIO, "create storage dir", err)
	}
	tmp, err := os.CreateTemp(s.basePath, ".partial-*")
	if err != nil {
		return 0, domain.WrapError(domain.ErrIO, "create file", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, data)
	if err != nil {
		_ = tmp.Close()
		return 0, domain.WrapError(domain.ErrIO, "write file", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, domain.WrapError(domain.ErrIO, "close file", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return 0, domain.WrapError(domain.ErrIO, "chmod file", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(name)); err != nil {
		return 0, domain.WrapError(domain.ErrIO, "commit file", err)
	}
	return n, nil
}

func (s *Storage) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrInputMissing, "open file", err)
		}
		return nil, domain.WrapError(domain.ErrIO, "open file", err)
	}
	return f, nil
}

// Relocate moves name out of the collection to dstDir/dstName. An occupied
// destination is never overwritten.
func (s *Storage) Relocate(_ context.Context, name, dstDir, dstName string) (int64, error) {
	src := s.Path(name)
	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, domain.WrapError(domain.ErrInputMissing, "relocate", fmt.Errorf("%s not found in %s", name, s.basePath))
		}
		return 0, domain.WrapError(domain.ErrIO, "relocate", err)
	}

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return 0, domain.WrapError(domain.ErrIO, "create destination dir", err)
	}
	dst := filepath.Join(dstDir, dstName)
	if _, err := os.Lstat(dst); err == nil {
		return 0, domain.WrapError(domain.ErrIO, "relocate", fmt.Errorf("%s: %w", dst, fs.ErrExist))
	}

	if err := moveFile(src, dst); err != nil {
		return 0, domain.WrapError(domain.ErrIO, "relocate", err)
	}
	return info.Size(), nil
}

func (s *Storage) Restore(_ context.Context, dstPath, name string) error {
	if err := moveFile(dstPath, s.Path(name)); err != nil {
		return domain.WrapError(domain.ErrIO, "restore", err)
	}
	return nil
}

func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}
	return copyThenRemove(src, dst)
}

// copyThenRemove handles moves across filesystems, where rename is not possible.
func copyThenRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return os.Remove(src)
}
