package main

import (
	"fmt"

	"github.com/pevans/newsdraft/article"
	"github.com/pevans/newsdraft/ledger"
	"github.com/spf13/cobra"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status [YYYY-MM-DD]",
	Short: "Show drafted articles recorded in the status ledger",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		l, err := ledger.NewFileStore(cfg.StatusPath()).Load()
		if err != nil {
			return err
		}

		if len(args) > 0 {
			if _, err := article.ParseDateKey(args[0]); err != nil {
				return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", args[0])
			}
			l = ledger.Ledger{args[0]: l[args[0]]}
		}

		out := cmd.OutOrStdout()
		switch statusFormat {
		case "table":
			printStatusTable(out, l)
		case "json":
			return printStatusJSON(out, l)
		default:
			return fmt.Errorf("invalid format: %s (must be table or json)", statusFormat)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "table", "Output format (table, json)")
}
