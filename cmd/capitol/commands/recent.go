package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wrenn/capitolwatch/internal/contracts"
)

var (
	recentDays  int
	recentLimit int
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show recently disclosed trades",
	RunE:  runRecent,
}

func init() {
	rootCmd.AddCommand(recentCmd)
	recentCmd.Flags().IntVar(&recentDays, "days", 7, "disclosure window in days")
	recentCmd.Flags().IntVar(&recentLimit, "limit", 25, "maximum trades to show")
}

func runRecent(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	trades, err := a.trades.Recent(context.Background(), recentDays, recentLimit)
	if err != nil {
		return fmt.Errorf("load recent trades: %w", err)
	}

	if len(trades) == 0 {
		fmt.Printf("No trades disclosed in the last %d days.\n", recentDays)
		return nil
	}

	fmt.Printf("Trades disclosed in the last %d days:\n", recentDays)
	printTradeTable(trades)
	return nil
}

func printTradeTable(trades []*contracts.TradeWithMember) {
	fmt.Printf("%-12s %-24s %-8s %-10s %-6s %-22s\n",
		"Date", "Member", "Chamber", "Type", "Ticker", "Amount")
	for _, t := range trades {
		ticker := t.Ticker
		if ticker == "" {
			ticker = "-"
		}
		fmt.Printf("%-12s %-24s %-8s %-10s %-6s %-22s\n",
			t.TransactionDate.Format("2006-01-02"),
			truncate(t.MemberName, 24), t.Chamber,
			t.TransactionType, ticker, t.AmountRange)
	}
}
