package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"auto-transcriber-go/internal/config"
	"auto-transcriber-go/internal/logger"
	"auto-transcriber-go/internal/media"
	"auto-transcriber-go/internal/pipeline"
	"auto-transcriber-go/internal/report"
	"auto-transcriber-go/internal/transcription"
	"auto-transcriber-go/internal/types"
	"auto-transcriber-go/internal/workspace"
)

const (
	defaultWorkDir   = "./workdir"
	defaultOutputDir = "./output"
)

type runOptions struct {
	configPath string
	workDir    string
	outputDir  string
	logLevel   string
	source     string
	noOpen     bool
	report     bool
}

// app holds the process-level collaborators so tests can replace them.
type app struct {
	in          io.Reader
	out         io.Writer
	errOut      io.Writer
	interactive bool
	runner      media.Runner
	locate      func(name string) (string, error)
	newClient   func(config.Resolved, *logger.Logger) (transcription.Client, error)
	openFolder  func(dir string) error
}

func newApp() *app {
	fd := os.Stdin.Fd()
	return &app{
		in:          os.Stdin,
		out:         os.Stdout,
		errOut:      os.Stderr,
		interactive: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		runner:      media.ExecRunner{},
		locate:      media.LocateTool,
		newClient: func(s config.Resolved, log *logger.Logger) (transcription.Client, error) {
			return transcription.New(s, transcription.WithLogger(log))
		},
		openFolder: openFolder,
	}
}

func (a *app) run(ctx context.Context, opts runOptions) error {
	level := opts.logLevel
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	log := logger.NewWithOutput(a.errOut, level).WithRun("")
	runID, _ := log.Data["run_id"].(string)

	printBanner(a.out)

	cfg, err := config.LoadRequired(opts.configPath)
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	settings, err := cfg.Resolve()
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	log = &logger.Logger{Entry: log.WithField("provider", settings.Provider)}

	ffmpeg, err := a.locate(media.FFmpeg)
	if err != nil {
		return fmt.Errorf("ffmpeg is not installed or not on PATH: %w", err)
	}
	ffprobe, err := a.locate(media.FFprobe)
	if err != nil {
		log.Debug("ffprobe not found, chunk durations unavailable")
		ffprobe = ""
	}

	lock, err := workspace.Acquire(opts.workDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.WithError(err).Warn("workspace lock not released")
		}
	}()

	client, err := a.newClient(settings, log)
	if err != nil {
		return err
	}
	p := pipeline.New(pipeline.Options{
		WorkDir:        opts.workDir,
		OutputDir:      opts.outputDir,
		FFmpeg:         ffmpeg,
		FFprobe:        ffprobe,
		SegmentSeconds: settings.SegmentSeconds,
	}, client,
		pipeline.WithRunner(a.runner),
		pipeline.WithLogger(log),
		pipeline.WithProgress(progressPrinter(a.out)),
	)

	if err := p.ResetWorkspace(); err != nil {
		return err
	}

	src, err := a.source(ctx, opts.source)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out)
	if src.Kind == types.KindVideo {
		fmt.Fprintln(a.out, "Extracting audio from video.")
	}
	fmt.Fprintln(a.out, "Splitting and transcribing audio.")

	tr, err := p.Run(ctx, src.Path)
	if err != nil {
		log.WithError(err).Error("run failed")
		return err
	}

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Done.")
	fmt.Fprintf(a.out, "Output file: %s\n", tr.OutputPath)
	fmt.Fprintln(a.out, renderSummary(tr))

	if opts.report {
		path := report.PathFor(opts.outputDir, tr)
		info := report.RunInfo{
			RunID:          runID,
			Source:         src.Path,
			Provider:       settings.Provider,
			Model:          settings.Model,
			SegmentSeconds: settings.SegmentSeconds,
			Finished:       time.Now(),
		}
		if err := report.Write(path, info, tr, log); err != nil {
			log.WithError(err).Warn("report not written")
		} else {
			fmt.Fprintf(a.out, "Report: %s\n", path)
		}
	}

	if !opts.noOpen {
		if err := a.openFolder(opts.outputDir); err != nil {
			log.WithError(err).Warn("could not open output directory")
		}
	}
	return nil
}

// source identifies the file given on the command line, or prompts for one.
func (a *app) source(ctx context.Context, arg string) (types.SourceFile, error) {
	if strings.TrimSpace(arg) != "" {
		return media.Identify(arg)
	}
	if !a.interactive {
		return types.SourceFile{}, errors.New("no source file given and stdin is not a terminal")
	}
	return promptSource(ctx, a.in, a.out)
}

func printBanner(w io.Writer) {
	rule := strings.Repeat("-", 50)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, " %s v%s\n", appName, appVersion)
	fmt.Fprintln(w)
	fmt.Fprintf(w, " %s\n", copyright)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

func progressPrinter(w io.Writer) pipeline.ProgressFunc {
	return func(e pipeline.Event) {
		if e.Done {
			fmt.Fprintln(w, "done")
			return
		}
		fmt.Fprintf(w, "Transcribing (%d/%d): %s ... ", e.Index+1, e.Total, filepath.Base(e.Chunk.Path))
	}
}
