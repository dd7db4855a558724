package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Interim tracks per-chunk transcript files written into the output
// directory so they can be removed once the merged transcript exists.
type Interim struct {
	dir   string
	paths []string
}

func NewInterim(dir string) *Interim {
	return &Interim{dir: dir}
}

// Write stores text as <dir>/<name> and remembers the path.
func (i *Interim) Write(name, text string) (string, error) {
	if err := os.MkdirAll(i.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(i.dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write interim transcript: %w", err)
	}
	i.paths = append(i.paths, path)
	return path, nil
}

// Paths returns the files written so far, in write order.
func (i *Interim) Paths() []string {
	return append([]string(nil), i.paths...)
}

// Cleanup removes every tracked file. Files already gone are ignored; other
// failures are collected and returned together.
func (i *Interim) Cleanup() error {
	var errs []error
	for _, p := range i.paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	i.paths = nil
	return errors.Join(errs...)
}
