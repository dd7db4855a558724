package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"auto-transcriber-go/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Settings file utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample settings file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				target = config.DefaultPath
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("settings file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check settings path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample settings to %s\n", target)
			fmt.Fprintln(out, "Set api_key (or export OPENAI_API_KEY / AZURE_OPENAI_API_KEY) before transcribing.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the settings file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite an existing settings file")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a settings file for problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				target = config.DefaultPath
			}
			cfg, exists, err := config.Load(target)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !exists {
				fmt.Fprintf(out, "%s not found; checking defaults\n", target)
			}
			problems := cfg.Problems()
			if len(problems) == 0 {
				fmt.Fprintln(out, "Settings are valid")
				return nil
			}
			for _, p := range problems {
				fmt.Fprintf(out, "  - %v\n", p)
			}
			return fmt.Errorf("%d settings problem(s)", len(problems))
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Settings file to check")
	return cmd
}
