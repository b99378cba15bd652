package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wrenn/capitolwatch/internal/ingest"
	"github.com/wrenn/capitolwatch/internal/notify"
)

var (
	syncDays     int
	syncNotify   bool
	syncFeeds    bool
	syncMaxPages int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch new trade disclosures",
	Long: `Pulls trade disclosures from capitoltrades.com into the local
database. Duplicates are dropped silently, so running sync repeatedly
is safe.

With --feeds, the house/senate stock watcher feeds are ingested as a
second source. With --notify, a push notification is sent for each new
trade (requires NTFY_TOPIC).`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().IntVar(&syncDays, "days", 0, "only process trades from the last N days (0 = no cutoff)")
	syncCmd.Flags().BoolVar(&syncNotify, "notify", false, "send a notification per new trade")
	syncCmd.Flags().BoolVar(&syncFeeds, "feeds", false, "also ingest the stock watcher feeds")
	syncCmd.Flags().IntVar(&syncMaxPages, "max-pages", 100, "maximum trade pages to fetch")
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	opts := ingest.Options{
		LookbackDays: syncDays,
		MaxPages:     syncMaxPages,
	}
	if syncNotify && a.notifier.Enabled() {
		opts.Notify = func(rec ingest.Record, _ int64) {
			a.notifier.Send(context.Background(), notify.NewTradeMessage(rec))
		}
	}

	result, err := a.newSyncer(syncFeeds).Sync(context.Background(), opts)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	printSyncResult(result)
	return nil
}

func printSyncResult(result *ingest.Result) {
	fmt.Println("\nSync complete:")
	fmt.Printf("  New trades added:   %d\n", result.NewTrades)
	fmt.Printf("  Duplicates skipped: %d\n", result.Duplicates)
	if result.SkippedOld > 0 {
		fmt.Printf("  Skipped (too old):  %d\n", result.SkippedOld)
	}
	if result.SkippedFilter > 0 {
		fmt.Printf("  Skipped (filtered): %d\n", result.SkippedFilter)
	}
}
