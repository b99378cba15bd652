package commands

import (
	"fmt"

	"github.com/wrenn/capitolwatch/internal/analysis"
	"github.com/wrenn/capitolwatch/internal/contracts"
	"github.com/wrenn/capitolwatch/internal/ingest"
	"github.com/wrenn/capitolwatch/internal/notify"
	"github.com/wrenn/capitolwatch/internal/prices"
	"github.com/wrenn/capitolwatch/internal/store"
	"github.com/wrenn/capitolwatch/pkg/config"
	"github.com/wrenn/capitolwatch/pkg/database"
	"github.com/wrenn/capitolwatch/pkg/logger"
)

// app holds the wired dependencies shared by all commands.
type app struct {
	cfg *config.Config
	log *logger.Logger
	db  *database.DB

	members   contracts.MemberRepository
	trades    contracts.TradeRepository
	priceRepo contracts.PriceRepository
	returns   contracts.ReturnRepository
	snapshots contracts.SnapshotRepository
	syncs     contracts.SyncRepository

	priceService *prices.Service
	analysis     *analysis.Service
	syncer       *ingest.Syncer
	notifier     *notify.Notifier
}

// newApp loads configuration and wires the full dependency graph.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	a := &app{
		cfg: cfg,
		log: log,
		db:  db,

		members:   store.NewMemberRepository(db.Pool),
		trades:    store.NewTradeRepository(db.Pool),
		priceRepo: store.NewPriceRepository(db.Pool),
		returns:   store.NewReturnRepository(db.Pool),
		snapshots: store.NewSnapshotRepository(db.Pool),
		syncs:     store.NewSyncRepository(db.Pool),
	}

	priceClient := prices.NewClient(cfg.Prices, log)
	a.priceService = prices.NewService(a.priceRepo, priceClient, cfg.Prices, log)

	a.analysis = analysis.NewService(
		a.trades, a.returns, a.members, a.snapshots,
		a.priceService, cfg.Analysis, log,
	)

	a.syncer = a.newSyncer(false)
	a.notifier = notify.New(cfg.Ntfy, log)

	return a, nil
}

// newSyncer builds a syncer over capitoltrades.com, optionally adding
// the house/senate stock watcher feeds as a second provider.
func (a *app) newSyncer(includeFeeds bool) *ingest.Syncer {
	providers := []ingest.Provider{ingest.NewCapitolTrades(a.cfg.Ingest, a.log)}
	if includeFeeds {
		providers = append(providers, ingest.NewStockWatcher(a.cfg.Ingest, a.log))
	}
	return ingest.NewSyncer(a.members, a.trades, a.syncs, providers, a.cfg.Ingest, a.log)
}

// Close releases the database pool.
func (a *app) Close() {
	a.db.Close()
}
