package main

import (
	"github.com/pevans/newsdraft"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <path/to/daily.json>",
	Short: "Generate markdown drafts from a saved snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		run, err := newsdraft.NewGenerateRun(cfg)
		if err != nil {
			return err
		}
		run.Out = cmd.OutOrStdout()

		_, err = run.Run(args[0])
		return err
	},
}
