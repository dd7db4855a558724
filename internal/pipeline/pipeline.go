package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"auto-transcriber-go/internal/logger"
	"auto-transcriber-go/internal/media"
	"auto-transcriber-go/internal/transcription"
	"auto-transcriber-go/internal/types"
	"auto-transcriber-go/internal/workspace"
)

const TranscriptExtension = ".txt"

// Options are resolved once at startup.
type Options struct {
	WorkDir        string
	OutputDir      string
	FFmpeg         string
	FFprobe        string // optional; enables chunk durations
	SegmentSeconds int
}

// Event is emitted around each chunk transcription.
type Event struct {
	Index int
	Total int
	Chunk types.AudioChunk
	Done  bool
}

type ProgressFunc func(Event)

type Option func(*Pipeline)

func WithRunner(r media.Runner) Option {
	return func(p *Pipeline) { p.runner = r }
}

func WithLogger(log *logger.Logger) Option {
	return func(p *Pipeline) { p.log = log.Component("pipeline") }
}

func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// Pipeline runs extract, split, transcribe and merge strictly in sequence
// and stops at the first failure.
type Pipeline struct {
	opts     Options
	client   transcription.Client
	runner   media.Runner
	log      *logger.Logger
	progress ProgressFunc
}

func New(opts Options, client transcription.Client, options ...Option) *Pipeline {
	p := &Pipeline{
		opts:     opts,
		client:   client,
		runner:   media.ExecRunner{},
		log:      logger.Discard(),
		progress: func(Event) {},
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// ResetWorkspace empties the work directory of files left by a previous run.
func (p *Pipeline) ResetWorkspace() error {
	removed, err := workspace.Reset(p.opts.WorkDir)
	if err != nil {
		return &StageError{Stage: StageResetWorkspace, Err: err}
	}
	p.log.WithField("workdir", p.opts.WorkDir).WithField("removed", len(removed)).Debug("workspace reset")
	return nil
}

// Run transcribes sourcePath. Interim per-chunk files written before a
// failure are left in the output directory.
func (p *Pipeline) Run(ctx context.Context, sourcePath string) (types.Transcript, error) {
	start := time.Now()

	src, err := media.Identify(sourcePath)
	if err != nil {
		return types.Transcript{}, &StageError{Stage: StageIdentify, Err: err}
	}
	log := p.log.WithFields(logrus.Fields{"source": src.Path, "kind": src.Kind})
	log.Info("run started")

	audioPath := src.Path
	if src.Kind == types.KindVideo {
		log.Info("extracting audio from video")
		audioPath, err = media.ExtractAudio(ctx, p.runner, p.opts.FFmpeg, src.Path, p.opts.WorkDir)
		if err != nil {
			return types.Transcript{}, &StageError{Stage: StageExtract, Err: err}
		}
		log.WithField("audio", audioPath).Info("audio extracted")
	}

	log.WithField("segment_seconds", p.opts.SegmentSeconds).Info("splitting audio")
	chunks, err := media.Split(ctx, p.runner, p.opts.FFmpeg, audioPath, p.opts.WorkDir, p.opts.SegmentSeconds)
	if err != nil {
		return types.Transcript{}, &StageError{Stage: StageSplit, Err: err}
	}
	p.probeDurations(ctx, audioPath, chunks)
	log.WithField("chunks", len(chunks)).Info("audio split")

	base := media.BaseName(src.Path)
	interim := workspace.NewInterim(p.opts.OutputDir)
	fragments, text, err := p.transcribeEach(ctx, chunks, interim)
	if err != nil {
		log.WithField("interim_files", len(interim.Paths())).Warn("run aborted, interim transcripts kept")
		return types.Transcript{}, err
	}

	outPath, err := p.merge(base, text, interim)
	if err != nil {
		return types.Transcript{}, &StageError{Stage: StageMerge, Err: err}
	}

	tr := types.Transcript{
		SourceBase: base,
		OutputPath: outPath,
		Text:       text,
		Chunks:     chunks,
		Fragments:  fragments,
		Elapsed:    time.Since(start),
	}
	log.WithField("output", outPath).WithField("elapsed_ms", tr.Elapsed.Milliseconds()).Info("run finished")
	return tr, nil
}

func (p *Pipeline) transcribeEach(ctx context.Context, chunks []types.AudioChunk, interim *workspace.Interim) ([]types.Fragment, string, error) {
	var acc strings.Builder
	fragments := make([]types.Fragment, 0, len(chunks))
	total := len(chunks)

	for i, chunk := range chunks {
		p.progress(Event{Index: i, Total: total, Chunk: chunk})

		text, err := p.client.Transcribe(ctx, chunk.Path)
		if err != nil {
			return fragments, "", &StageError{Stage: StageTranscribe, Chunk: i, Total: total, Err: err}
		}
		name := media.BaseName(chunk.Path) + TranscriptExtension
		interimPath, err := interim.Write(name, text)
		if err != nil {
			return fragments, "", &StageError{Stage: StageTranscribe, Chunk: i, Total: total, Err: err}
		}
		acc.WriteString(text)
		acc.WriteString("\n")
		fragments = append(fragments, types.Fragment{Index: i, Text: text, InterimPath: interimPath})

		p.progress(Event{Index: i, Total: total, Chunk: chunk, Done: true})
	}
	return fragments, acc.String(), nil
}

func (p *Pipeline) merge(base, text string, interim *workspace.Interim) (string, error) {
	if err := os.MkdirAll(p.opts.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	outPath := filepath.Join(p.opts.OutputDir, base+TranscriptExtension)
	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	// The merged file is complete at this point; a leftover interim file is
	// not worth failing the run over.
	if err := interim.Cleanup(); err != nil {
		p.log.WithError(err).Warn("interim transcripts not fully removed")
	}
	return outPath, nil
}

// probeDurations fills chunk durations when ffprobe is available. Failures
// only cost the durations.
func (p *Pipeline) probeDurations(ctx context.Context, audioPath string, chunks []types.AudioChunk) {
	if p.opts.FFprobe == "" {
		return
	}
	if total, err := media.Probe(ctx, p.runner, p.opts.FFprobe, audioPath); err == nil {
		p.log.WithField("duration_s", total.Seconds()).Debug("source duration")
	}
	for i := range chunks {
		d, err := media.Probe(ctx, p.runner, p.opts.FFprobe, chunks[i].Path)
		if err != nil {
			p.log.WithError(err).WithField("chunk", filepath.Base(chunks[i].Path)).Debug("probe failed")
			continue
		}
		chunks[i].Duration = d
	}
}
