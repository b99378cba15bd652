package jobs

import (
	"context"

	"github.com/wrenn/capitolwatch/internal/ingest"
	"github.com/wrenn/capitolwatch/internal/notify"
	"github.com/wrenn/capitolwatch/pkg/logger"
)

// TradeSyncJob pulls new disclosures every hour. Notifications fire per
// new trade when the notifier is enabled.
type TradeSyncJob struct {
	syncer   *ingest.Syncer
	notifier *notify.Notifier
	lookback int
	logger   *logger.Logger
}

// NewTradeSyncJob creates the hourly trade sync job.
func NewTradeSyncJob(syncer *ingest.Syncer, notifier *notify.Notifier, lookbackDays int, log *logger.Logger) *TradeSyncJob {
	return &TradeSyncJob{
		syncer:   syncer,
		notifier: notifier,
		lookback: lookbackDays,
		logger:   log,
	}
}

func (j *TradeSyncJob) Name() string {
	return "trade_sync"
}

// Schedule runs at the top of every hour.
func (j *TradeSyncJob) Schedule() string {
	return "0 0 * * * *"
}

func (j *TradeSyncJob) Run(ctx context.Context) error {
	opts := ingest.Options{LookbackDays: j.lookback}
	if j.notifier.Enabled() {
		opts.Notify = func(rec ingest.Record, _ int64) {
			j.notifier.Send(ctx, notify.NewTradeMessage(rec))
		}
	}

	result, err := j.syncer.Sync(ctx, opts)
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"new_trades": result.NewTrades,
		"duplicates": result.Duplicates,
	}).Info("Scheduled trade sync finished")

	return nil
}
