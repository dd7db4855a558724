package report

import (
	"fmt"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"auto-transcriber-go/internal/logger"
	"auto-transcriber-go/internal/types"
)

const (
	RunSheet    = "Run"
	ChunksSheet = "Chunks"
	Suffix      = "-report.xlsx"
)

// RunInfo is the context of one run shown on the Run sheet.
type RunInfo struct {
	RunID          string
	Source         string
	Provider       string
	Model          string
	SegmentSeconds int
	Finished       time.Time
}

// PathFor returns where the report for transcript tr is written.
func PathFor(outputDir string, tr types.Transcript) string {
	return filepath.Join(outputDir, tr.SourceBase+Suffix)
}

// Write saves a workbook with one row per chunk next to the transcript. A nil
// log falls back to logger.New.
func Write(path string, info RunInfo, tr types.Transcript, log *logger.Logger) error {
	if log == nil {
		log = logger.New()
	}
	entry := log.Component("report").WithField("path", path)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RunSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	runRows := [][]interface{}{
		{"run_id", info.RunID},
		{"source", info.Source},
		{"provider", info.Provider},
		{"model", info.Model},
		{"segment_seconds", info.SegmentSeconds},
		{"chunks", len(tr.Chunks)},
		{"output", tr.OutputPath},
		{"elapsed_seconds", tr.Elapsed.Seconds()},
		{"finished", info.Finished.Format(time.RFC3339)},
	}
	for i, row := range runRows {
		if err := setRow(f, RunSheet, i+1, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(ChunksSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := setRow(f, ChunksSheet, 1, []interface{}{"index", "file", "duration_seconds", "characters", "text"}); err != nil {
		return err
	}
	texts := map[int]string{}
	for _, fr := range tr.Fragments {
		texts[fr.Index] = fr.Text
	}
	for i, c := range tr.Chunks {
		text := texts[c.Index]
		row := []interface{}{c.Index, filepath.Base(c.Path), c.Duration.Seconds(), utf8.RuneCountInString(text), text}
		if err := setRow(f, ChunksSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		entry.WithError(err).Error("save failed")
		return fmt.Errorf("save report: %w", err)
	}
	entry.WithField("chunks", len(tr.Chunks)).Info("report written")
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
