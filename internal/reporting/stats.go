package reporting

import (
	"sort"
	"time"

	"foodshare/internal/utils"
	"foodshare/pkg/types"
)

// RedistributedPercentage is the share of food items redistributed, rounded
// to one decimal. It is zero when there are no items.
func RedistributedPercentage(redistributed, total int) float64 {
	return percentage(redistributed, total)
}

// CategoryDistribution labels each category count with its share of all
// items. The busiest category comes first; ties are ordered by label.
func CategoryDistribution(counts []types.CategoryCount) []types.CategoryShare {
	total := 0
	for _, c := range counts {
		total += c.Count
	}

	shares := make([]types.CategoryShare, 0, len(counts))
	for _, c := range counts {
		shares = append(shares, types.CategoryShare{
			Name:       c.Category.Label(),
			Count:      c.Count,
			Percentage: percentage(c.Count, total),
		})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		if shares[i].Count != shares[j].Count {
			return shares[i].Count > shares[j].Count
		}
		return shares[i].Name < shares[j].Name
	})

	return shares
}

// LastMonths returns the first instant (UTC) of each of the n months ending
// with the month containing now, oldest first.
func LastMonths(now time.Time, n int) []time.Time {
	if n < 1 {
		return nil
	}

	now = now.UTC()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	months := make([]time.Time, n)
	for i := 0; i < n; i++ {
		months[n-1-i] = current.AddDate(0, -i, 0)
	}

	return months
}

// MonthlyTrends pairs each month bucket with its donation count. Percentages
// are relative to the busiest month so the largest bar is 100.
func MonthlyTrends(months []time.Time, counts []types.MonthCount) []types.MonthlyTrend {
	byMonth := make(map[time.Time]int, len(counts))
	for _, c := range counts {
		m := c.Month.UTC()
		key := time.Date(m.Year(), m.Month(), 1, 0, 0, 0, 0, time.UTC)
		byMonth[key] += c.Count
	}

	peak := 0
	for _, month := range months {
		if byMonth[month] > peak {
			peak = byMonth[month]
		}
	}

	trends := make([]types.MonthlyTrend, 0, len(months))
	for _, month := range months {
		count := byMonth[month]
		trends = append(trends, types.MonthlyTrend{
			Name:       month.Format("January 2006"),
			Count:      count,
			Percentage: percentage(count, peak),
		})
	}

	return trends
}

func percentage(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return utils.RoundFloat64(float64(part)/float64(whole)*100, 1)
}
