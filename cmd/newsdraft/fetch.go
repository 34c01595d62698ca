package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/pevans/newsdraft"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [YYYY-MM-DD]",
	Short: "Fetch a ranking and merge it into the day's snapshot",
	Long: `Fetch the access ranking for today (JST) or the given date, read every
ranked article page, and merge the results into data/<date>.json and
data/latest.json.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		var date string
		if len(args) > 0 {
			date = args[0]
		}

		run, err := newsdraft.NewFetchRun(cfg)
		if err != nil {
			return err
		}
		run.Out = cmd.OutOrStdout()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		_, err = run.Run(ctx, date)
		return err
	},
}
