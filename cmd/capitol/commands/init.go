package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wrenn/capitolwatch/internal/ingest"
	"github.com/wrenn/capitolwatch/internal/store"
	"github.com/wrenn/capitolwatch/pkg/config"
)

var initFullLoad bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the database schema",
	Long: `Applies database migrations, creating all tables and indexes.

With --full-load, also performs the initial historical trade load
covering the configured lookback window (five years by default).`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initFullLoad, "full-load", false, "load historical trades after migrating")
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Println("Applying database migrations...")
	if err := store.Migrate(cfg.Database.URL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Println("Database ready")

	if !initFullLoad {
		return nil
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("Loading trades from the last %d days...\n", a.cfg.Ingest.InitialLookback)
	result, err := a.newSyncer(true).Sync(context.Background(), ingest.Options{
		LookbackDays: a.cfg.Ingest.InitialLookback,
	})
	if err != nil {
		return fmt.Errorf("initial load: %w", err)
	}

	printSyncResult(result)
	return nil
}
