package store

import (
	"context"
	"fmt"
	"time"

	"foodshare/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

// StatsRepository runs the aggregate queries behind the dashboards.
type StatsRepository struct {
	db DB
}

func NewStatsRepository(db DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) AccountCounts(ctx context.Context) (types.AccountCounts, error) {
	var counts types.AccountCounts

	query, args, err := psql().
		Select(
			"count(*) FILTER (WHERE is_staff) AS staff",
			"count(*) FILTER (WHERE NOT is_staff) AS donors",
		).
		From(accountTableName).
		ToSql()
	if err != nil {
		return counts, fmt.Errorf("failed to generate account counts query: %w", err)
	}

	err = pgxscan.Get(ctx, r.db, &counts, query, args...)
	if err != nil {
		return counts, fmt.Errorf("failed to count accounts: %w", err)
	}

	return counts, nil
}

// DonationStatusCounts counts donations per status, optionally for a
// single donor. Statuses with no donations are present with zero.
func (r *StatsRepository) DonationStatusCounts(ctx context.Context, donorID string) (map[types.DonationStatus]int, error) {
	builder := psql().
		Select("status", "count(*) AS count").
		From(donationTableName).
		GroupBy("status")
	if donorID != "" {
		builder = builder.Where(sq.Eq{"donor_id": donorID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate status counts query: %w", err)
	}

	var rows []struct {
		Status types.DonationStatus `db:"status"`
		Count  int                  `db:"count"`
	}
	err = pgxscan.Select(ctx, r.db, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count donations by status: %w", err)
	}

	counts := make(map[types.DonationStatus]int, len(types.AllDonationStatuses))
	for _, status := range types.AllDonationStatuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}

func (r *StatsRepository) FoodItemTotals(ctx context.Context) (types.FoodItemTotals, error) {
	var totals types.FoodItemTotals

	query, args, err := psql().
		Select(
			"count(*) AS total",
			"count(*) FILTER (WHERE status = 'redistributed') AS redistributed",
			"coalesce(sum(quantity), 0) AS quantity",
		).
		From(foodItemTableName).
		ToSql()
	if err != nil {
		return totals, fmt.Errorf("failed to generate item totals query: %w", err)
	}

	err = pgxscan.Get(ctx, r.db, &totals, query, args...)
	if err != nil {
		return totals, fmt.Errorf("failed to total food items: %w", err)
	}

	return totals, nil
}

func (r *StatsRepository) CategoryCounts(ctx context.Context) ([]types.CategoryCount, error) {
	query, args, err := psql().
		Select("category", "count(*) AS count").
		From(foodItemTableName).
		GroupBy("category").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate category counts query: %w", err)
	}

	counts := make([]types.CategoryCount, 0)
	err = pgxscan.Select(ctx, r.db, &counts, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count items by category: %w", err)
	}

	return counts, nil
}

// MonthlyDonationCounts buckets donations submitted on or after since by
// UTC calendar month.
func (r *StatsRepository) MonthlyDonationCounts(ctx context.Context, since time.Time) ([]types.MonthCount, error) {
	query, args, err := psql().
		Select(
			"date_trunc('month', submitted_at AT TIME ZONE 'UTC') AS month",
			"count(*) AS count",
		).
		From(donationTableName).
		Where(sq.GtOrEq{"submitted_at": since}).
		GroupBy("month").
		OrderBy("month").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate monthly counts query: %w", err)
	}

	counts := make([]types.MonthCount, 0)
	err = pgxscan.Select(ctx, r.db, &counts, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count donations by month: %w", err)
	}

	return counts, nil
}
