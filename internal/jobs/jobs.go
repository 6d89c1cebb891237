package jobs

import (
	"context"
	"fmt"
	"time"

	"foodshare/pkg/types"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type AccountPurger interface {
	DeleteStaleUnverified(ctx context.Context, cutoff time.Time) (int64, error)
}

type StatsSource interface {
	AccountCounts(ctx context.Context) (types.AccountCounts, error)
	DonationStatusCounts(ctx context.Context, donorID string) (map[types.DonationStatus]int, error)
	FoodItemTotals(ctx context.Context) (types.FoodItemTotals, error)
}

type Recorder interface {
	AccountsPurged(n int64)
	JobRun(job string, success bool)
}

// Runner schedules the housekeeping jobs.
type Runner struct {
	logger   *logrus.Logger
	config   *types.Config
	accounts AccountPurger
	stats    StatsSource
	recorder Recorder
	now      func() time.Time

	cron *cron.Cron
}

func NewRunner(logger *logrus.Logger, config *types.Config, accounts AccountPurger, stats StatsSource, recorder Recorder) *Runner {
	return &Runner{
		logger:   logger,
		config:   config,
		accounts: accounts,
		stats:    stats,
		recorder: recorder,
		now:      time.Now,
		cron: cron.New(
			cron.WithLogger(cron.PrintfLogger(logger)),
			cron.WithChain(cron.Recover(cron.PrintfLogger(logger)), cron.SkipIfStillRunning(cron.PrintfLogger(logger))),
		),
	}
}

// Run schedules every job and blocks until ctx is done, then waits for
// running jobs to finish.
func (r *Runner) Run(ctx context.Context) error {
	_, err := r.cron.AddFunc(r.config.PurgeUnverifiedSchedule, func() { r.PurgeUnverified(ctx) })
	if err != nil {
		return fmt.Errorf("failed to schedule purge job: %w", err)
	}

	_, err = r.cron.AddFunc(r.config.StatsSnapshotSchedule, func() { r.StatsSnapshot(ctx) })
	if err != nil {
		return fmt.Errorf("failed to schedule stats job: %w", err)
	}

	r.cron.Start()
	r.logger.WithField("jobs", len(r.cron.Entries())).Info("housekeeping scheduler started")

	<-ctx.Done()

	<-r.cron.Stop().Done()
	r.logger.Info("housekeeping scheduler stopped")

	return nil
}

// PurgeCutoff is the instant before which unverified tokens are old enough
// to delete: the verification window plus the retention grace period.
func (r *Runner) PurgeCutoff() time.Time {
	ttl := time.Duration(r.config.VerificationTTLHours) * time.Hour
	retention := time.Duration(r.config.UnverifiedRetentionHrs) * time.Hour
	return r.now().Add(-(ttl + retention))
}

func (r *Runner) PurgeUnverified(ctx context.Context) {
	cutoff := r.PurgeCutoff()

	n, err := r.accounts.DeleteStaleUnverified(ctx, cutoff)
	r.recorder.JobRun("purge_unverified", err == nil)
	if err != nil {
		r.logger.WithError(err).Error("failed to purge unverified accounts")
		return
	}

	r.recorder.AccountsPurged(n)
	r.logger.WithField("deleted", n).WithField("cutoff", cutoff).Info("purged unverified accounts")
}

func (r *Runner) StatsSnapshot(ctx context.Context) {
	fields, err := r.snapshot(ctx)
	r.recorder.JobRun("stats_snapshot", err == nil)
	if err != nil {
		r.logger.WithError(err).Error("failed to collect statistics snapshot")
		return
	}

	r.logger.WithFields(fields).Info("daily statistics snapshot")
}

func (r *Runner) snapshot(ctx context.Context) (logrus.Fields, error) {
	accounts, err := r.stats.AccountCounts(ctx)
	if err != nil {
		return nil, err
	}

	statuses, err := r.stats.DonationStatusCounts(ctx, "")
	if err != nil {
		return nil, err
	}

	items, err := r.stats.FoodItemTotals(ctx)
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{
		"staff":                    accounts.Staff,
		"donors":                   accounts.Donors,
		"food_items":               items.Total,
		"food_items_redistributed": items.Redistributed,
		"food_quantity":            items.Quantity,
	}
	for _, status := range types.AllDonationStatuses {
		fields["donations_"+string(status)] = statuses[status]
	}

	return fields, nil
}
