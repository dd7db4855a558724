package media

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	FFmpeg  = "ffmpeg"
	FFprobe = "ffprobe"
)

// LocateTool finds name next to the running executable first, then on PATH.
func LocateTool(name string) (string, error) {
	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	return LocateToolIn(name, dirs...)
}

// LocateToolIn checks each bundled directory before falling back to PATH.
func LocateToolIn(name string, bundled ...string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty command", ErrToolMissing)
	}
	for _, dir := range bundled {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, executableName(name))
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			return candidate, nil
		}
	}
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("%w: binary %q not found", ErrToolMissing, name)
}

// Requirement defines an external tool the transcriber relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Requirement
	Path      string
	Available bool
	Detail    string
}

// DefaultRequirements lists ffmpeg (required) and ffprobe (durations only).
func DefaultRequirements() []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: FFmpeg, Description: "Extracts and segments audio"},
		{Name: "FFprobe", Command: FFprobe, Description: "Reports chunk durations", Optional: true},
	}
}

// CheckTools evaluates each requirement with locate, or LocateTool when nil.
func CheckTools(reqs []Requirement, locate func(string) (string, error)) []Status {
	if locate == nil {
		locate = LocateTool
	}
	results := make([]Status, 0, len(reqs))
	for _, req := range reqs {
		st := Status{Requirement: req}
		path, err := locate(req.Command)
		if err != nil {
			st.Detail = fmt.Sprintf("binary %q not found", req.Command)
		} else {
			st.Path = path
			st.Available = true
		}
		results = append(results, st)
	}
	return results
}

func executableName(name string) string {
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		return name + ".exe"
	}
	return name
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
