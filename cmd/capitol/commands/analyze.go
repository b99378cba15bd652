package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wrenn/capitolwatch/internal/contracts"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute returns and Sharpe rankings",
	Long: `Runs the full analysis pipeline: fetches any missing price
history, computes per-trade returns, and writes a dated statistics
snapshot per member. Prints the top of the resulting ranking.`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()

	summary, err := a.analysis.Run(ctx)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	fmt.Println("Analysis complete:")
	fmt.Printf("  Trades analyzed:  %d\n", summary.TradesAnalyzed)
	fmt.Printf("  Members analyzed: %d\n", summary.MembersAnalyzed)
	fmt.Printf("  Snapshot date:    %s\n", summary.SnapshotDate.Format("2006-01-02"))

	rankings, err := a.analysis.Rankings(ctx)
	if err != nil {
		return fmt.Errorf("load rankings: %w", err)
	}
	if len(rankings) == 0 {
		return nil
	}

	if len(rankings) > 10 {
		rankings = rankings[:10]
	}

	fmt.Println("\nTop members by 30-day Sharpe:")
	fmt.Printf("%-4s %-28s %-8s %10s %10s %8s\n", "#", "Member", "Chamber", "Sharpe30", "WinRate", "Trades")
	for i, s := range rankings {
		fmt.Printf("%-4d %-28s %-8s %10s %10s %8d\n",
			i+1, truncate(s.MemberName, 28), s.Chamber,
			fmtStat(s.Sharpe30D, "%.2f"), fmtPct(s.WinRate30D), s.NumTrades)
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func fmtStat(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func fmtPct(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", *v*100)
}

func fmtSnapshotRow(i int, s *contracts.SharpeSnapshot) string {
	return fmt.Sprintf("%-4d %-12s %10s %10s %10s %8d",
		i+1, s.SnapshotDate.Format("2006-01-02"),
		fmtStat(s.Sharpe30D, "%.2f"), fmtStat(s.SharpeCurrent, "%.2f"),
		fmtPct(s.WinRate30D), s.NumTrades)
}
