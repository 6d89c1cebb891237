package reporting

import (
	"testing"
	"time"

	"foodshare/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedistributedPercentage(t *testing.T) {
	assert.Equal(t, 0.0, RedistributedPercentage(0, 0))
	assert.Equal(t, 33.3, RedistributedPercentage(1, 3))
	assert.Equal(t, 66.7, RedistributedPercentage(2, 3))
	assert.Equal(t, 100.0, RedistributedPercentage(4, 4))
}

func TestCategoryDistribution(t *testing.T) {
	shares := CategoryDistribution([]types.CategoryCount{
		{Category: types.FoodCategorySnacks, Count: 1},
		{Category: types.FoodCategoryCanned, Count: 3},
		{Category: types.FoodCategoryBeverages, Count: 1},
		{Category: types.FoodCategoryPackaged, Count: 1},
	})

	require.Len(t, shares, 4)
	assert.Equal(t, types.CategoryShare{Name: "Canned Foods", Count: 3, Percentage: 50}, shares[0])
	assert.Equal(t, "Beverages", shares[1].Name)
	assert.Equal(t, "Packaged Foods", shares[2].Name)
	assert.Equal(t, "Snacks", shares[3].Name)
	assert.Equal(t, 16.7, shares[3].Percentage)

	assert.Empty(t, CategoryDistribution(nil))
}

func TestLastMonthsAcrossYearBoundary(t *testing.T) {
	now := time.Date(2026, time.February, 14, 18, 30, 0, 0, time.UTC)

	months := LastMonths(now, 6)
	require.Len(t, months, 6)
	assert.Equal(t, time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), months[0])
	assert.Equal(t, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), months[3])
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), months[5])
}

func TestLastMonthsEndOfMonth(t *testing.T) {
	now := time.Date(2026, time.March, 31, 12, 0, 0, 0, time.UTC)

	months := LastMonths(now, 2)
	assert.Equal(t, []time.Time{
		time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
	}, months)
}

func TestMonthlyTrends(t *testing.T) {
	months := LastMonths(time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC), 3)
	trends := MonthlyTrends(months, []types.MonthCount{
		{Month: time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC), Count: 2},
		{Month: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), Count: 4},
	})

	assert.Equal(t, []types.MonthlyTrend{
		{Name: "November 2025", Count: 2, Percentage: 50},
		{Name: "December 2025", Count: 0, Percentage: 0},
		{Name: "January 2026", Count: 4, Percentage: 100},
	}, trends)
}

func TestMonthlyTrendsNoDonations(t *testing.T) {
	months := LastMonths(time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC), 6)
	for _, trend := range MonthlyTrends(months, nil) {
		assert.Zero(t, trend.Count)
		assert.Zero(t, trend.Percentage)
	}
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("abc"))
	assert.Equal(t, 1, ParsePage("-4"))
	assert.Equal(t, 1, ParsePage("0"))
	assert.Equal(t, 7, ParsePage(" 7 "))
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name                   string
		total, perPage, req    int
		wantNumber, wantPages  int
		wantOffset             int
		wantNext, wantPrevious bool
	}{
		{name: "empty listing", total: 0, perPage: 5, req: 3, wantNumber: 1, wantPages: 1},
		{name: "first page", total: 12, perPage: 5, req: 1, wantNumber: 1, wantPages: 3, wantNext: true},
		{name: "middle page", total: 12, perPage: 5, req: 2, wantNumber: 2, wantPages: 3, wantOffset: 5, wantNext: true, wantPrevious: true},
		{name: "past the end clamps", total: 12, perPage: 5, req: 9, wantNumber: 3, wantPages: 3, wantOffset: 10, wantPrevious: true},
		{name: "below one clamps", total: 12, perPage: 5, req: -1, wantNumber: 1, wantPages: 3, wantNext: true},
		{name: "exact multiple", total: 10, perPage: 10, req: 2, wantNumber: 1, wantPages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.total, tt.perPage, tt.req)
			assert.Equal(t, tt.wantNumber, p.Number)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.wantOffset, p.Offset)
			assert.Equal(t, tt.wantNext, p.HasNext())
			assert.Equal(t, tt.wantPrevious, p.HasPrevious())
		})
	}
}

func TestPageWindow(t *testing.T) {
	assert.Equal(t, []int{1}, PageWindow(1, 1))
	assert.Equal(t, []int{1, 2}, PageWindow(2, 2))
	assert.Equal(t, []int{1, 2, 3}, PageWindow(1, 10))
	assert.Equal(t, []int{1, 2, 3}, PageWindow(2, 10))
	assert.Equal(t, []int{4, 5, 6}, PageWindow(5, 10))
	assert.Equal(t, []int{8, 9, 10}, PageWindow(9, 10))
	assert.Equal(t, []int{8, 9, 10}, PageWindow(10, 10))
	assert.Empty(t, PageWindow(1, 0))
}

func TestDashboard(t *testing.T) {
	now := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)

	dash := Dashboard(DashboardInput{
		Now:          now,
		Accounts:     types.AccountCounts{Staff: 2, Donors: 9},
		StatusCounts: map[types.DonationStatus]int{types.DonationStatusPending: 4},
		ItemTotals:   types.FoodItemTotals{Total: 8, Redistributed: 2, Quantity: 31},
		TrendMonths:  6,
		Page:         Paginate(11, 5, 2),
	})

	assert.Equal(t, 2, dash.TotalAdmins)
	assert.Equal(t, 9, dash.TotalDonors)
	assert.Equal(t, 4, dash.PendingCount)
	assert.Equal(t, 25.0, dash.RedistributedPercentage)
	assert.Equal(t, 31, dash.TotalQuantity)
	assert.Len(t, dash.MonthlyTrends, 6)
	assert.Equal(t, "March 2026", dash.MonthlyTrends[5].Name)
	assert.Equal(t, []int{1, 2, 3}, dash.PageRange)
	assert.Equal(t, 2, dash.CurrentPage)
	assert.NotNil(t, dash.Donations)
}

func TestDonorDashboard(t *testing.T) {
	dash := DonorDashboard(map[types.DonationStatus]int{
		types.DonationStatusPending:   2,
		types.DonationStatusApproved:  1,
		types.DonationStatusCompleted: 3,
	}, nil)

	assert.Equal(t, 6, dash.TotalDonations)
	assert.Equal(t, 2, dash.PendingDonations)
	assert.Equal(t, 3, dash.CompletedDonations)
	assert.NotNil(t, dash.RecentDonations)
}
