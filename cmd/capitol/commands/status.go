package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and sync status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()

	counts, err := a.trades.Counts(ctx)
	if err != nil {
		return fmt.Errorf("load counts: %w", err)
	}

	fmt.Println("Capitol Watch status:")
	fmt.Printf("  Total trades:     %d\n", counts.TotalTrades)
	fmt.Printf("  Members tracked:  %d\n", counts.TotalMembers)
	fmt.Printf("  Trades last week: %d\n", counts.TradesLastWeek)
	fmt.Printf("  Trades today:     %d\n", counts.TradesToday)

	last, err := a.syncs.Last(ctx)
	if err != nil {
		return fmt.Errorf("load sync log: %w", err)
	}
	if last == nil {
		fmt.Println("  Last sync:        never")
		return nil
	}

	if last.CompletedAt == nil {
		fmt.Printf("  Last sync:        %s since %s\n",
			last.Status, last.StartedAt.Format("2006-01-02 15:04:05"))
		return nil
	}

	fmt.Printf("  Last sync:        %s (%d trades added)\n",
		last.CompletedAt.Format("2006-01-02 15:04:05"), last.TradesAdded)

	return nil
}
