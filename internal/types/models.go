package types

import "time"

type MediaKind string

const (
	KindAudio MediaKind = "audio"
	KindVideo MediaKind = "video"
)

// SourceFile is the operator-selected input, identified by extension.
type SourceFile struct {
	Path string    `json:"path"`
	Kind MediaKind `json:"kind"`
}

// AudioChunk is one bounded-duration slice written by the segmenter.
// Duration is zero when the chunk was not probed.
type AudioChunk struct {
	Index    int           `json:"index"`
	Path     string        `json:"path"`
	Duration time.Duration `json:"duration,omitempty"`
}

type Fragment struct {
	Index       int    `json:"index"`
	Text        string `json:"text"`
	InterimPath string `json:"interim_path,omitempty"`
}

// Transcript is the merged result of one run.
type Transcript struct {
	SourceBase string        `json:"source_base"`
	OutputPath string        `json:"output_path"`
	Text       string        `json:"text"`
	Chunks     []AudioChunk  `json:"chunks"`
	Fragments  []Fragment    `json:"fragments"`
	Elapsed    time.Duration `json:"elapsed"`
}
