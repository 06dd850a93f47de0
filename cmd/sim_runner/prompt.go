package main

import (
	"os"

	"github.com/miretskiy/mm1ksim/report"
	"github.com/spf13/cobra"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Ask for λ, μ, K, finish and start time, then run",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := loadSimConfig()
		if err != nil {
			return err
		}

		prompter := report.NewPrompter(os.Stdin, cmd.OutOrStdout())
		prompter.Defaults = defaults
		config, err := prompter.Prompt()
		if err != nil {
			return err
		}
		return runOnce(cmd.OutOrStdout(), config)
	},
}
