package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// ErrBusy means another run holds the workspace.
var ErrBusy = errors.New("workspace is in use by another run")

// Reset creates dir if needed and removes every regular file directly inside
// it. Subdirectories and their contents are left alone. It returns the names
// of the removed files.
func Reset(dir string) ([]string, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("reset workspace: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace %q: %w", dir, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read workspace %q: %w", dir, err)
	}

	var removed []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return removed, fmt.Errorf("remove %q: %w", entry.Name(), err)
		}
		removed = append(removed, entry.Name())
	}
	return removed, nil
}

// Lock guards one workspace against concurrent runs. The lock file sits next
// to the directory, not inside it, so Reset never removes it.
type Lock struct {
	lock *flock.Flock
}

// LockPath returns the lock file used for dir.
func LockPath(dir string) string {
	return filepath.Clean(dir) + ".lock"
}

// Acquire takes the workspace lock without blocking.
func Acquire(dir string) (*Lock, error) {
	path := LockPath(dir)
	if parent := filepath.Dir(path); parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return nil, fmt.Errorf("create lock directory: %w", err)
		}
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock workspace: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBusy, path)
	}
	return &Lock{lock: fl}, nil
}

// Release unlocks and removes the lock file.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	path := l.lock.Path()
	if err := l.lock.Unlock(); err != nil {
		return err
	}
	l.lock = nil
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
