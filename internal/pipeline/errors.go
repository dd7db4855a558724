package pipeline

import (
	"fmt"

	"auto-transcriber-go/internal/media"
	"auto-transcriber-go/internal/transcription"
)

type Stage string

const (
	StageResetWorkspace Stage = "reset_workspace"
	StageIdentify       Stage = "identify"
	StageExtract        Stage = "extract_audio"
	StageSplit          Stage = "split"
	StageTranscribe     Stage = "transcribe"
	StageMerge          Stage = "merge"
)

// StageError is a failure that ended the run. Chunk and Total are set for
// the transcribe stage only.
type StageError struct {
	Stage Stage
	Chunk int
	Total int
	Err   error
}

func (e *StageError) Error() string {
	if e.Stage == StageTranscribe && e.Total > 0 {
		return fmt.Sprintf("%s chunk %d/%d: %v", e.Stage, e.Chunk+1, e.Total, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap exposes the cause and the stage sentinel, so a network error during
// transcription still matches transcription.ErrTranscription.
func (e *StageError) Unwrap() []error {
	errs := []error{e.Err}
	switch e.Stage {
	case StageExtract:
		errs = append(errs, media.ErrExtraction)
	case StageSplit:
		errs = append(errs, media.ErrSplit)
	case StageTranscribe:
		errs = append(errs, transcription.ErrTranscription)
	}
	return errs
}
