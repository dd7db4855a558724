package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type probeOutput struct {
	Format struct {
		Filename string `json:"filename"`
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe returns the container duration reported by ffprobe.
func Probe(ctx context.Context, runner Runner, ffprobe, path string) (time.Duration, error) {
	args := []string{"-v", "error", "-hide_banner", "-show_format", "-of", "json", "--", path}
	res, err := runner.Run(ctx, ffprobe, args...)
	if err != nil {
		return 0, newToolError(ErrProbe, "probe", ffprobe, res, err)
	}

	var out probeOutput
	if err := json.Unmarshal([]byte(res.Stdout), &out); err != nil {
		return 0, fmt.Errorf("%w: parse ffprobe output: %v", ErrProbe, err)
	}
	raw := strings.TrimSpace(out.Format.Duration)
	if raw == "" || raw == "N/A" {
		return 0, fmt.Errorf("%w: no duration for %s", ErrProbe, path)
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("%w: bad duration %q", ErrProbe, raw)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
