package lock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/kirillkom/policy-sorter/internal/core/domain"
)

const Filename = ".policyctl.lock"

// RunLock is an exclusive advisory lock held for the length of one command run.
type RunLock struct {
	path string
	lock *flock.Flock
}

func New(dir string) *RunLock {
	path := filepath.Join(dir, Filename)
	return &RunLock{path: path, lock: flock.New(path)}
}

func (l *RunLock) Path() string {
	return l.path
}

// Acquire takes the lock without waiting. The locked directory must already
// exist; a missing one yields ErrInputMissing and a held lock yields ErrLocked.
func (l *RunLock) Acquire() error {
	dir := filepath.Dir(l.path)
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return domain.WrapError(domain.ErrInputMissing, "acquire lock", fmt.Errorf("%s folder not found", dir))
	case err != nil:
		return domain.WrapError(domain.ErrIO, "acquire lock", err)
	case !info.IsDir():
		return domain.WrapError(domain.ErrInputMissing, "acquire lock", fmt.Errorf("%s is not a folder", dir))
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return domain.WrapError(domain.ErrIO, "acquire lock", err)
	}
	if !ok {
		return domain.WrapError(domain.ErrLocked, "acquire lock", fmt.Errorf("another run holds %s", l.path))
	}
	return nil
}

func (l *RunLock) Release() error {
	if err := l.lock.Unlock(); err != nil {
		return domain.WrapError(domain.ErrIO, "release lock", err)
	}
	return nil
}
