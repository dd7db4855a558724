package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"auto-transcriber-go/internal/media"
	"auto-transcriber-go/internal/types"
)

var errNoSource = errors.New("no source file given")

type promptLine struct {
	text string
	err  error
}

// readLines feeds lines from in until a read error or ctx is done. The
// goroutine may stay blocked in Read after cancellation; the process is
// exiting at that point.
func readLines(ctx context.Context, in io.Reader) <-chan promptLine {
	lines := make(chan promptLine)
	go func() {
		reader := bufio.NewReader(in)
		for {
			text, err := reader.ReadString('\n')
			select {
			case lines <- promptLine{text: text, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return lines
}

// promptSource asks for a file path until a supported, existing file is given.
// Cancelling ctx abandons the prompt.
func promptSource(ctx context.Context, in io.Reader, out io.Writer) (types.SourceFile, error) {
	lines := readLines(ctx, in)
	for {
		fmt.Fprint(out, "Enter the path of the audio or video file to transcribe: ")

		var line promptLine
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return types.SourceFile{}, ctx.Err()
		case line = <-lines:
		}
		if line.err != nil && !errors.Is(line.err, io.EOF) {
			return types.SourceFile{}, fmt.Errorf("read source path: %w", line.err)
		}
		path := media.CleanPath(line.text)
		if path == "" && line.err != nil {
			return types.SourceFile{}, errNoSource
		}

		src, err := media.Identify(path)
		switch {
		case err == nil:
			return src, nil
		case errors.Is(err, media.ErrUnsupported):
			fmt.Fprintf(out, "Unsupported file type. Supported: %s\n", strings.Join(media.SupportedExtensions(), ", "))
		case errors.Is(err, media.ErrNotFound):
			fmt.Fprintln(out, "File not found.")
		default:
			return types.SourceFile{}, err
		}
		if line.err != nil {
			return types.SourceFile{}, errNoSource
		}
	}
}
