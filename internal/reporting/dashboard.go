package reporting

import (
	"time"

	"foodshare/pkg/types"
)

// DashboardInput is everything the staff dashboard is computed from.
type DashboardInput struct {
	Now            time.Time
	Accounts       types.AccountCounts
	StatusCounts   map[types.DonationStatus]int
	ItemTotals     types.FoodItemTotals
	CategoryCounts []types.CategoryCount
	MonthCounts    []types.MonthCount
	TrendMonths    int
	Donations      []types.DonationListRow
	Page           Page
}

func Dashboard(in DashboardInput) types.AdminDashboard {
	donations := in.Donations
	if donations == nil {
		donations = []types.DonationListRow{}
	}

	return types.AdminDashboard{
		TotalAdmins:             in.Accounts.Staff,
		TotalDonors:             in.Accounts.Donors,
		PendingCount:            in.StatusCounts[types.DonationStatusPending],
		TotalFoodItems:          in.ItemTotals.Total,
		RedistributedCount:      in.ItemTotals.Redistributed,
		RedistributedPercentage: RedistributedPercentage(in.ItemTotals.Redistributed, in.ItemTotals.Total),
		TotalQuantity:           in.ItemTotals.Quantity,
		CategoryDistribution:    CategoryDistribution(in.CategoryCounts),
		MonthlyTrends:           MonthlyTrends(LastMonths(in.Now, in.TrendMonths), in.MonthCounts),
		Donations:               donations,
		PageRange:               PageWindow(in.Page.Number, in.Page.TotalPages),
		TotalPages:              in.Page.TotalPages,
		CurrentPage:             in.Page.Number,
	}
}

// DonorDashboard summarises one donor's donations.
func DonorDashboard(statusCounts map[types.DonationStatus]int, recent []types.DonationSummary) types.DonorDashboard {
	total := 0
	for _, n := range statusCounts {
		total += n
	}
	if recent == nil {
		recent = []types.DonationSummary{}
	}

	return types.DonorDashboard{
		TotalDonations:     total,
		PendingDonations:   statusCounts[types.DonationStatusPending],
		CompletedDonations: statusCounts[types.DonationStatusCompleted],
		RecentDonations:    recent,
	}
}
