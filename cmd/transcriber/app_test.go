package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"auto-transcriber-go/internal/config"
	"auto-transcriber-go/internal/logger"
	"auto-transcriber-go/internal/media"
	"auto-transcriber-go/internal/transcription"
)

// scriptedMedia writes three chunks on split and reports 100s per probe.
type scriptedMedia struct{}

func (scriptedMedia) Run(ctx context.Context, name string, args ...string) (media.Result, error) {
	switch {
	case filepath.Base(name) == media.FFprobe:
		return media.Result{Stdout: `{"format":{"duration":"100.000"}}`}, nil
	case slices.Contains(args, "segment"):
		pattern := args[len(args)-1]
		for i := 0; i < 3; i++ {
			chunk := filepath.Join(filepath.Dir(pattern), fmt.Sprintf(filepath.Base(pattern), i))
			if err := os.WriteFile(chunk, []byte("chunk"), 0o644); err != nil {
				return media.Result{ExitCode: 1}, err
			}
		}
		return media.Result{}, nil
	default:
		return media.Result{}, os.WriteFile(args[len(args)-1], []byte("audio"), 0o644)
	}
}

type echoClient struct{ calls int }

func (c *echoClient) Transcribe(ctx context.Context, chunkPath string) (string, error) {
	c.calls++
	return "part " + strings.TrimSuffix(filepath.Base(chunkPath), filepath.Ext(chunkPath)), nil
}

type harness struct {
	app    *app
	out    *bytes.Buffer
	client *echoClient
	opened []string
	root   string
	opts   runOptions
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LOG_LEVEL", "")
	root := t.TempDir()
	h := &harness{out: &bytes.Buffer{}, client: &echoClient{}, root: root}
	h.app = &app{
		in:     strings.NewReader(""),
		out:    h.out,
		errOut: &bytes.Buffer{},
		runner: scriptedMedia{},
		locate: func(name string) (string, error) { return name, nil },
		newClient: func(config.Resolved, *logger.Logger) (transcription.Client, error) {
			return h.client, nil
		},
		openFolder: func(dir string) error {
			h.opened = append(h.opened, dir)
			return nil
		},
	}
	h.opts = runOptions{
		configPath: filepath.Join(root, "settings.toml"),
		workDir:    filepath.Join(root, "workdir"),
		outputDir:  filepath.Join(root, "output"),
	}
	if err := os.WriteFile(h.opts.configPath, []byte("[API]\ntype = \"openai\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return h
}

func writeSource(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunTranscribesVideo(t *testing.T) {
	h := newHarness(t)
	h.opts.source = writeSource(t, h.root, "talk.mp4")
	h.opts.report = true

	if err := h.app.run(context.Background(), h.opts); err != nil {
		t.Fatalf("run: %v", err)
	}

	body, err := os.ReadFile(filepath.Join(h.opts.outputDir, "talk.txt"))
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if string(body) != "part talk-000\npart talk-001\npart talk-002\n" {
		t.Fatalf("transcript = %q", body)
	}
	out := h.out.String()
	for _, want := range []string{
		"Auto Transcriber v" + appVersion,
		"Extracting audio from video.",
		"Transcribing (1/3): talk-000.m4a ... done",
		"Transcribing (3/3): talk-002.m4a ... done",
		"Output file: " + filepath.Join(h.opts.outputDir, "talk.txt"),
		"talk-002.m4a",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if _, err := os.Stat(filepath.Join(h.opts.outputDir, "talk-report.xlsx")); err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if len(h.opened) != 1 || h.opened[0] != h.opts.outputDir {
		t.Fatalf("opened = %v", h.opened)
	}
	if _, err := os.Stat(h.opts.workDir + ".lock"); !os.IsNotExist(err) {
		t.Fatalf("lock file should be removed, stat err = %v", err)
	}
}

func TestRunMissingFFmpegStopsBeforeWorkspace(t *testing.T) {
	h := newHarness(t)
	h.opts.source = writeSource(t, h.root, "talk.mp3")
	h.app.locate = func(name string) (string, error) { return "", media.ErrToolMissing }

	err := h.app.run(context.Background(), h.opts)
	if !errors.Is(err, media.ErrToolMissing) {
		t.Fatalf("expected ErrToolMissing, got %v", err)
	}
	if _, statErr := os.Stat(h.opts.workDir); !os.IsNotExist(statErr) {
		t.Fatalf("workdir should not exist, stat err = %v", statErr)
	}
	if h.client.calls != 0 {
		t.Fatalf("client called %d times", h.client.calls)
	}
}

func TestRunRejectsInvalidSettings(t *testing.T) {
	h := newHarness(t)
	h.opts.source = writeSource(t, h.root, "talk.mp3")
	settings := "[API]\ntype = \"OpenAI\"\n\n[General]\naudio_segment_time = 0\n"
	if err := os.WriteFile(h.opts.configPath, []byte(settings), 0o644); err != nil {
		t.Fatal(err)
	}

	err := h.app.run(context.Background(), h.opts)
	if !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "audio_segment_time") {
		t.Fatalf("error should name the key: %v", err)
	}
}

func TestRunRequiresSettingsFile(t *testing.T) {
	h := newHarness(t)
	h.opts.source = writeSource(t, h.root, "talk.mp3")
	h.opts.configPath = filepath.Join(h.root, "azure.toml")

	err := h.app.run(context.Background(), h.opts)
	if !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "[API] type") || !strings.Contains(err.Error(), "azure.toml") {
		t.Fatalf("error should name the section and file: %v", err)
	}
	if _, statErr := os.Stat(h.opts.workDir); !os.IsNotExist(statErr) {
		t.Fatalf("workdir should not exist, stat err = %v", statErr)
	}
	if h.client.calls != 0 {
		t.Fatalf("client called %d times", h.client.calls)
	}
}

func TestRunCancelledAtPrompt(t *testing.T) {
	h := newHarness(t)
	h.opts.noOpen = true
	pr, pw := io.Pipe()
	defer pw.Close()
	h.app.interactive = true
	h.app.in = pr

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- h.app.run(ctx, h.opts) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run still waiting at the prompt after cancellation")
	}
	if h.client.calls != 0 {
		t.Fatalf("client called %d times", h.client.calls)
	}
}

func TestRunWithoutSourceRequiresTerminal(t *testing.T) {
	h := newHarness(t)
	h.opts.noOpen = true

	if err := h.app.run(context.Background(), h.opts); err == nil {
		t.Fatal("expected error without source on a non-terminal stdin")
	}
	if h.client.calls != 0 {
		t.Fatalf("client called %d times", h.client.calls)
	}
}

func TestRunPromptsForSource(t *testing.T) {
	h := newHarness(t)
	h.opts.noOpen = true
	src := writeSource(t, h.root, "memo.m4a")
	h.app.interactive = true
	h.app.in = strings.NewReader(fmt.Sprintf("%q\n", src))

	if err := h.app.run(context.Background(), h.opts); err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Contains(h.out.String(), "Extracting audio") {
		t.Fatal("audio source must not be extracted")
	}
	if _, err := os.Stat(filepath.Join(h.opts.outputDir, "memo.txt")); err != nil {
		t.Fatalf("transcript missing: %v", err)
	}
	if len(h.opened) != 0 {
		t.Fatalf("--no-open should skip opening, got %v", h.opened)
	}
}

func TestRunClearsPreviousWorkspace(t *testing.T) {
	h := newHarness(t)
	h.opts.noOpen = true
	h.opts.source = writeSource(t, h.root, "talk.mp3")
	if err := os.MkdirAll(h.opts.workDir, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(h.opts.workDir, "old-000.mp3")
	if err := os.WriteFile(stale, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := h.app.run(context.Background(), h.opts); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale chunk should be removed, stat err = %v", err)
	}
	if h.client.calls != 3 {
		t.Fatalf("expected 3 transcriptions, got %d", h.client.calls)
	}
}
