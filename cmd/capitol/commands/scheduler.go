package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wrenn/capitolwatch/internal/scheduler"
	"github.com/wrenn/capitolwatch/internal/scheduler/jobs"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage scheduled jobs",
	Long: `Runs or inspects the background job scheduler.

Registered jobs:
  trade_sync       - hourly disclosure sync
  sharpe_analysis  - daily return and ranking recomputation`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runSchedulerStart,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  runSchedulerList,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerRun,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// initScheduler wires the scheduler with both jobs.
func initScheduler() (*scheduler.Scheduler, *app, error) {
	a, err := newApp()
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(a.log)

	// Hourly syncs only look back a week; the initial load covers the
	// rest.
	syncJob := jobs.NewTradeSyncJob(a.newSyncer(false), a.notifier, 7, a.log)
	if err := sched.AddJob(syncJob); err != nil {
		return nil, nil, err
	}
	if err := sched.AddJob(jobs.NewSharpeAnalysisJob(a.analysis, a.log)); err != nil {
		return nil, nil, err
	}

	return sched, a, nil
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	sched, a, err := initScheduler()
	if err != nil {
		return err
	}
	defer a.Close()

	sched.Start()

	fmt.Println("Scheduler started. Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func runSchedulerList(cmd *cobra.Command, args []string) error {
	sched, a, err := initScheduler()
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println("Registered jobs:")
	for name, stat := range sched.GetJobStats() {
		fmt.Printf("  - %-16s %s\n", name, stat.Schedule)
	}
	return nil
}

func runSchedulerRun(cmd *cobra.Command, args []string) error {
	sched, a, err := initScheduler()
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("Running job: %s\n", args[0])
	if err := sched.RunJob(args[0]); err != nil {
		return err
	}

	// RunJob is asynchronous; block until interrupted so the job can
	// finish.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	fmt.Println("Job started; press Ctrl+C when done watching logs")
	<-quit

	return nil
}
