package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <member>",
	Short: "Show a member's Sharpe snapshot history",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 30, "maximum snapshots to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	member, history, err := a.analysis.MemberHistory(context.Background(), args[0], historyLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if member == nil {
		return fmt.Errorf("no member matching %q", args[0])
	}

	fmt.Printf("%s (%s", member.Name, member.Chamber)
	if member.Party != "" {
		fmt.Printf(", %s", member.Party)
	}
	fmt.Println(")")

	if len(history) == 0 {
		fmt.Println("No snapshots yet; run `capitol analyze` first.")
		return nil
	}

	fmt.Printf("%-4s %-12s %10s %10s %10s %8s\n", "#", "Date", "Sharpe30", "SharpeCur", "WinRate", "Trades")
	for i, s := range history {
		fmt.Println(fmtSnapshotRow(i, s))
	}

	return nil
}
