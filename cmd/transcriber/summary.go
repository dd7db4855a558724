package main

import (
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"auto-transcriber-go/internal/types"
)

func newTable(headers ...string) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	header := make(table.Row, 0, len(headers))
	for _, h := range headers {
		header = append(header, h)
	}
	tw.AppendHeader(header)
	return tw
}

// renderSummary lists every chunk with its duration and transcript length,
// totals in the footer.
func renderSummary(tr types.Transcript) string {
	chars := make(map[int]int, len(tr.Fragments))
	for _, f := range tr.Fragments {
		chars[f.Index] = utf8.RuneCountInString(f.Text)
	}

	tw := newTable("#", "Chunk", "Duration", "Characters")
	var total time.Duration
	totalChars := 0
	for _, c := range tr.Chunks {
		total += c.Duration
		totalChars += chars[c.Index]
		tw.AppendRow(table.Row{c.Index + 1, filepath.Base(c.Path), formatDuration(c.Duration), chars[c.Index]})
	}
	tw.AppendFooter(table.Row{"", "total", formatDuration(total), totalChars})

	right := func(name string) table.ColumnConfig {
		return table.ColumnConfig{Name: name, Align: text.AlignRight, AlignFooter: text.AlignRight}
	}
	tw.SetColumnConfigs([]table.ColumnConfig{right("#"), right("Duration"), right("Characters")})
	return tw.Render()
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Second).String()
}
