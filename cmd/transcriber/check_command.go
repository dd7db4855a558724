package main

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"auto-transcriber-go/internal/media"
)

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether ffmpeg and ffprobe can be found",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := media.CheckTools(media.DefaultRequirements(), a.locate)

			tw := newTable("Tool", "Status", "Location", "Purpose")
			missing := false
			for _, st := range statuses {
				state := "ok"
				location := st.Path
				if !st.Available {
					state = "missing"
					location = st.Detail
					if st.Optional {
						state = "missing (optional)"
					} else {
						missing = true
					}
				}
				tw.AppendRow(table.Row{st.Name, state, location, st.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), tw.Render())

			if missing {
				return errors.New("required tools are missing")
			}
			return nil
		},
	}
}
