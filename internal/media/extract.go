package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ExtractedExtension is the container used for audio pulled out of video.
const ExtractedExtension = ".m4a"

// ExtractAudio demuxes the best audio stream of source into
// <workDir>/<base>.m4a and returns that path.
func ExtractAudio(ctx context.Context, runner Runner, ffmpeg, source, workDir string) (string, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", fmt.Errorf("create work directory: %w", err)
	}
	dest := filepath.Join(workDir, BaseName(source)+ExtractedExtension)

	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-q:a", "0",
		dest,
	}
	res, err := runner.Run(ctx, ffmpeg, args...)
	if err != nil {
		return "", newToolError(ErrExtraction, "extract", ffmpeg, res, err)
	}
	return dest, nil
}
