package media

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"auto-transcriber-go/internal/types"
)

var (
	AudioExtensions = []string{".mp3", ".m4a"}
	VideoExtensions = []string{".mp4", ".avi", ".mov", ".mkv"}
)

// SupportedExtensions returns audio then video extensions.
func SupportedExtensions() []string {
	return slices.Concat(AudioExtensions, VideoExtensions)
}

// KindOf classifies a path by its extension, case-insensitively.
func KindOf(path string) (types.MediaKind, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case slices.Contains(AudioExtensions, ext):
		return types.KindAudio, true
	case slices.Contains(VideoExtensions, ext):
		return types.KindVideo, true
	default:
		return "", false
	}
}

// CleanPath trims whitespace and one pair of matching outer quotes, as file
// managers add when a path is pasted or dropped into a terminal. A lone quote
// is part of the name.
func CleanPath(raw string) string {
	p := strings.TrimSpace(raw)
	if len(p) >= 2 && (p[0] == '"' || p[0] == '\'') && p[len(p)-1] == p[0] {
		p = strings.TrimSpace(p[1 : len(p)-1])
	}
	return p
}

// Identify checks existence and extension of a source file.
func Identify(path string) (types.SourceFile, error) {
	path = CleanPath(path)
	if path == "" {
		return types.SourceFile{}, fmt.Errorf("%w: empty path", ErrNotFound)
	}
	// Extension first: an unsupported name is rejected without touching the disk.
	kind, ok := KindOf(path)
	if !ok {
		return types.SourceFile{}, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupported,
			filepath.Ext(path), strings.Join(SupportedExtensions(), ", "))
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return types.SourceFile{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return types.SourceFile{Path: path, Kind: kind}, nil
}

// BaseName is the file name without directory and extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
