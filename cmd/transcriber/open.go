package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/pkg/browser"
)

func init() {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// openFolder shows dir in the platform file manager.
func openFolder(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve output directory: %w", err)
	}
	return browser.OpenFile(abs)
}
