package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrenn/capitolwatch/internal/api"
	"github.com/wrenn/capitolwatch/internal/api/handlers"
	"github.com/wrenn/capitolwatch/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON API server",
	Long: `Serves the rankings, member history and trade endpoints for the
display layer. Shuts down gracefully on SIGINT/SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// Migrations are idempotent, so the server can always bring the
	// schema up to date before listening.
	if err := store.Migrate(a.cfg.Database.URL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	router := api.NewRouter(
		handlers.NewRankingHandler(a.analysis, a.log),
		handlers.NewTradeHandler(a.trades, a.log),
		a.log,
	)
	server := api.New(a.cfg, a.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
