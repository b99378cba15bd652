package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wrenn/capitolwatch/internal/contracts"
)

var (
	searchTicker string
	searchMember string
	searchLimit  int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search trades by ticker or member",
	Long: `Searches the trade ledger. Exactly one of --ticker or --member
is required; member names match as substrings.`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchTicker, "ticker", "", "stock ticker to search for")
	searchCmd.Flags().StringVar(&searchMember, "member", "", "member name to search for")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 25, "maximum trades to show")
}

func runSearch(cmd *cobra.Command, args []string) error {
	if (searchTicker == "") == (searchMember == "") {
		return fmt.Errorf("exactly one of --ticker or --member is required")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var trades []*contracts.TradeWithMember
	if searchTicker != "" {
		trades, err = a.trades.ByTicker(context.Background(), searchTicker, searchLimit)
	} else {
		trades, err = a.trades.ByMember(context.Background(), searchMember, searchLimit)
	}
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if len(trades) == 0 {
		fmt.Println("No matching trades.")
		return nil
	}

	printTradeTable(trades)
	return nil
}
