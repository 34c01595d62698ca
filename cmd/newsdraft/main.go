package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pevans/newsdraft/config"
	"github.com/spf13/cobra"
)

var (
	configFile  string
	dataDir     string
	articlesDir string
	delay       time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "newsdraft",
	Short: "Scrape the Nikkei ranking and draft articles from it",
	Long: `newsdraft fetches the Nikkei access ranking into dated JSON snapshots
and generates markdown drafts from a saved snapshot.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultPath, "Path to config file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Snapshot and ledger directory (default: data)")
	rootCmd.PersistentFlags().StringVar(&articlesDir, "articles-dir", "", "Draft output directory (default: articles)")
	rootCmd.PersistentFlags().DurationVar(&delay, "delay", 0, "Pause between article requests (default: 1.5s)")

	rootCmd.AddCommand(fetchCmd, generateCmd, statusCmd)
}

// loadConfig reads the config file and environment, then applies any flags
// given on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Read(configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("articles-dir") {
		cfg.ArticlesDir = articlesDir
	}
	if flags.Changed("delay") {
		cfg.HTTP.Delay = delay
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
