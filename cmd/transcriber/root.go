package main

import (
	"github.com/spf13/cobra"

	"auto-transcriber-go/internal/config"
)

const (
	appName    = "Auto Transcriber"
	appVersion = "1.0.0"
	copyright  = "© 2025 led-mirage"
)

func newRootCommand(a *app) *cobra.Command {
	var opts runOptions

	rootCmd := &cobra.Command{
		Use:           "transcriber [source]",
		Short:         "Transcribe an audio or video file through a speech-to-text API",
		Version:       appVersion,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.source = args[0]
			}
			return a.run(cmd.Context(), opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "Settings file path")
	flags.StringVar(&opts.workDir, "workdir", defaultWorkDir, "Working directory, emptied at the start of every run")
	flags.StringVarP(&opts.outputDir, "output", "o", defaultOutputDir, "Directory for transcripts")
	flags.BoolVar(&opts.noOpen, "no-open", false, "Do not open the output directory when done")
	flags.BoolVar(&opts.report, "report", false, "Also write an xlsx report of the chunks")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to LOG_LEVEL")

	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newCheckCommand(a))

	return rootCmd
}
