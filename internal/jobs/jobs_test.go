package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"foodshare/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	cutoff time.Time
	n      int64
	err    error
}

func (f *fakePurger) DeleteStaleUnverified(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.n, f.err
}

type fakeStats struct {
	err error
}

func (f fakeStats) AccountCounts(context.Context) (types.AccountCounts, error) {
	return types.AccountCounts{Staff: 1, Donors: 4}, nil
}

func (f fakeStats) DonationStatusCounts(context.Context, string) (map[types.DonationStatus]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return map[types.DonationStatus]int{types.DonationStatusPending: 2}, nil
}

func (f fakeStats) FoodItemTotals(context.Context) (types.FoodItemTotals, error) {
	return types.FoodItemTotals{Total: 5, Redistributed: 1, Quantity: 12}, nil
}

type fakeRecorder struct {
	purged int64
	runs   map[string]bool
}

func (f *fakeRecorder) AccountsPurged(n int64) { f.purged += n }

func (f *fakeRecorder) JobRun(job string, success bool) {
	if f.runs == nil {
		f.runs = map[string]bool{}
	}
	f.runs[job] = success
}

func newRunner(purger AccountPurger, stats StatsSource) (*Runner, *test.Hook, *fakeRecorder) {
	logger, hook := test.NewNullLogger()
	recorder := &fakeRecorder{}
	config := &types.Config{
		VerificationTTLHours:    24,
		UnverifiedRetentionHrs:  168,
		PurgeUnverifiedSchedule: "@hourly",
		StatsSnapshotSchedule:   "@daily",
	}

	r := NewRunner(logger, config, purger, stats, recorder)
	r.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return r, hook, recorder
}

func TestPurgeUnverified(t *testing.T) {
	purger := &fakePurger{n: 4}
	r, hook, recorder := newRunner(purger, fakeStats{})

	r.PurgeUnverified(context.Background())

	assert.Equal(t, time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), purger.cutoff)
	assert.EqualValues(t, 4, recorder.purged)
	assert.True(t, recorder.runs["purge_unverified"])
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.EqualValues(t, 4, hook.LastEntry().Data["deleted"])
}

func TestPurgeUnverifiedFailure(t *testing.T) {
	r, hook, recorder := newRunner(&fakePurger{err: errors.New("db down")}, fakeStats{})

	r.PurgeUnverified(context.Background())

	assert.False(t, recorder.runs["purge_unverified"])
	assert.Zero(t, recorder.purged)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestStatsSnapshot(t *testing.T) {
	r, hook, recorder := newRunner(&fakePurger{}, fakeStats{})

	r.StatsSnapshot(context.Background())

	assert.True(t, recorder.runs["stats_snapshot"])
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, 4, entry.Data["donors"])
	assert.Equal(t, 2, entry.Data["donations_pending"])
	assert.Equal(t, 0, entry.Data["donations_completed"])
	assert.Equal(t, 12, entry.Data["food_quantity"])
}

func TestStatsSnapshotFailure(t *testing.T) {
	r, hook, recorder := newRunner(&fakePurger{}, fakeStats{err: errors.New("timeout")})

	r.StatsSnapshot(context.Background())

	assert.False(t, recorder.runs["stats_snapshot"])
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestRunStopsWithContext(t *testing.T) {
	r, _, _ := newRunner(&fakePurger{}, fakeStats{})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- r.Run(ctx) }()

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestRunRejectsBadSchedule(t *testing.T) {
	r, _, _ := newRunner(&fakePurger{}, fakeStats{})
	r.config.PurgeUnverifiedSchedule = "every so often"

	err := r.Run(context.Background())
	assert.Error(t, err)
}
