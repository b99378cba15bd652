package jobs

import (
	"context"

	"github.com/wrenn/capitolwatch/internal/analysis"
	"github.com/wrenn/capitolwatch/pkg/logger"
)

// SharpeAnalysisJob recomputes returns and member statistics daily,
// after the overnight syncs have landed.
type SharpeAnalysisJob struct {
	service *analysis.Service
	logger  *logger.Logger
}

// NewSharpeAnalysisJob creates the daily analysis job.
func NewSharpeAnalysisJob(service *analysis.Service, log *logger.Logger) *SharpeAnalysisJob {
	return &SharpeAnalysisJob{
		service: service,
		logger:  log,
	}
}

func (j *SharpeAnalysisJob) Name() string {
	return "sharpe_analysis"
}

// Schedule runs daily at 06:30 UTC, after US markets have closed and
// the hourly syncs have caught up.
func (j *SharpeAnalysisJob) Schedule() string {
	return "0 30 6 * * *"
}

func (j *SharpeAnalysisJob) Run(ctx context.Context) error {
	summary, err := j.service.Run(ctx)
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"trades_analyzed":  summary.TradesAnalyzed,
		"members_analyzed": summary.MembersAnalyzed,
	}).Info("Scheduled analysis finished")

	return nil
}
