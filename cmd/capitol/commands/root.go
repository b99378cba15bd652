package commands

import (
	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "capitol",
	Short: "Congressional stock trade tracking and analysis",
	Long: `Capitol Watch

Tracks congressional stock trade disclosures, computes per-trade
returns against market prices, and ranks members of Congress by the
risk-adjusted performance of their trades.

Examples:
  capitol init
  capitol sync --days 30 --notify
  capitol analyze
  capitol history "Jane Doe"
  capitol serve`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
