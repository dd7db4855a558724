package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"auto-transcriber-go/internal/types"
)

// ChunkDigits is the zero-padded width of the chunk sequence number.
const ChunkDigits = 3

// ChunkPattern is the ffmpeg output template for the chunks of audioPath.
// A literal % in the path is doubled so ffmpeg does not read it as a
// sequence specifier.
func ChunkPattern(workDir, audioPath string) string {
	ext := strings.ToLower(filepath.Ext(audioPath))
	prefix := strings.ReplaceAll(filepath.Join(workDir, BaseName(audioPath)), "%", "%%")
	return fmt.Sprintf("%s-%%0%dd%s", prefix, ChunkDigits, ext)
}

// ChunkName is the file name ffmpeg gives to chunk index of audioPath.
func ChunkName(audioPath string, index int) string {
	ext := strings.ToLower(filepath.Ext(audioPath))
	return fmt.Sprintf("%s-%0*d%s", BaseName(audioPath), ChunkDigits, index, ext)
}

// Split cuts audioPath into chunks of at most segmentSeconds using stream
// copy. The last chunk may be shorter, and the other boundaries follow the
// container's keyframes.
func Split(ctx context.Context, runner Runner, ffmpeg, audioPath, workDir string, segmentSeconds int) ([]types.AudioChunk, error) {
	if segmentSeconds <= 0 {
		return nil, fmt.Errorf("%w: segment length must be positive, got %d", ErrSplit, segmentSeconds)
	}
	if _, err := os.Stat(audioPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSplit, err)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}

	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", audioPath,
		"-f", "segment",
		"-segment_time", strconv.Itoa(segmentSeconds),
		"-reset_timestamps", "1",
		"-c", "copy",
		ChunkPattern(workDir, audioPath),
	}
	res, err := runner.Run(ctx, ffmpeg, args...)
	if err != nil {
		return nil, newToolError(ErrSplit, "split", ffmpeg, res, err)
	}

	chunks, err := ListChunks(workDir, audioPath)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: ffmpeg produced no chunks for %s", ErrSplit, filepath.Base(audioPath))
	}
	return chunks, nil
}

// ListChunks returns the chunks of audioPath found directly in workDir,
// ordered by sequence number. The input file itself is never included.
func ListChunks(workDir, audioPath string) ([]types.AudioChunk, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, fmt.Errorf("read work directory: %w", err)
	}
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(BaseName(audioPath)) + `-(\d{` + strconv.Itoa(ChunkDigits) + `,})(\.[^.]+)$`)
	inputAbs, _ := filepath.Abs(audioPath)

	type numbered struct {
		seq  int
		path string
	}
	var found []numbered
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		m := re.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		if kind, ok := KindOf(entry.Name()); !ok || kind != types.KindAudio {
			continue
		}
		path := filepath.Join(workDir, entry.Name())
		if abs, _ := filepath.Abs(path); abs == inputAbs {
			continue
		}
		seq, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		found = append(found, numbered{seq: seq, path: path})
	}
	slices.SortFunc(found, func(a, b numbered) int { return a.seq - b.seq })

	chunks := make([]types.AudioChunk, 0, len(found))
	for i, f := range found {
		chunks = append(chunks, types.AudioChunk{Index: i, Path: f.path})
	}
	return chunks, nil
}
