package media

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrToolMissing = errors.New("external media tool not found")
	ErrNotFound    = errors.New("source file not found")
	ErrUnsupported = errors.New("unsupported file type")
	ErrExtraction  = errors.New("audio extraction failed")
	ErrSplit       = errors.New("audio split failed")
	ErrProbe       = errors.New("media probe failed")
)

// ToolError is a failed external command. Diagnostic holds its stderr.
type ToolError struct {
	Op         string
	Tool       string
	ExitCode   int
	Diagnostic string
	Err        error
	kind       error
}

func newToolError(kind error, op, tool string, res Result, err error) *ToolError {
	return &ToolError{
		Op:         op,
		Tool:       tool,
		ExitCode:   res.ExitCode,
		Diagnostic: strings.TrimSpace(res.Stderr),
		Err:        err,
		kind:       kind,
	}
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s: %s exited with %d", e.kind, e.Tool, e.ExitCode)
	if e.Diagnostic != "" {
		msg += ": " + e.Diagnostic
	}
	return msg
}

func (e *ToolError) Unwrap() []error {
	return []error{e.kind, e.Err}
}
