package store

import (
	"context"
	"fmt"
	"time"

	"foodshare/internal/utils"
	"foodshare/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

const foodItemTableName = "foodshare.food_items"

var foodItemColumns = utils.StructTagValues(types.FoodItem{})

type FoodItemRepository struct {
	db DB
}

func NewFoodItemRepository(db DB) *FoodItemRepository {
	return &FoodItemRepository{db: db}
}

func (r *FoodItemRepository) ItemsByDonation(ctx context.Context, donationID string) ([]*types.FoodItem, error) {
	return r.ItemsByDonations(ctx, []string{donationID})
}

// ItemsByDonations fetches the items of several donations in one query,
// ordered by creation within each donation.
func (r *FoodItemRepository) ItemsByDonations(ctx context.Context, donationIDs []string) ([]*types.FoodItem, error) {
	items := make([]*types.FoodItem, 0)
	if len(donationIDs) == 0 {
		return items, nil
	}

	query, args, err := psql().
		Select(foodItemColumns...).
		From(foodItemTableName).
		Where(sq.Eq{"donation_id": donationIDs}).
		OrderBy("donation_id", "created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate items query: %w", err)
	}

	err = pgxscan.Select(ctx, r.db, &items, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch food items: %w", err)
	}

	return items, nil
}

func (r *FoodItemRepository) CountItems(ctx context.Context) (int, error) {
	query, args, err := psql().
		Select("count(*)").
		From(foodItemTableName).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate count items query: %w", err)
	}

	var count int
	err = pgxscan.Get(ctx, r.db, &count, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count food items: %w", err)
	}

	return count, nil
}

// ListItems returns a page of every food item with its donation number and
// donor, newest donation first.
func (r *FoodItemRepository) ListItems(ctx context.Context, limit, offset int) ([]*types.FoodItemListing, error) {
	columns := append(utils.PrefixColumns("i", foodItemColumns),
		"d.donation_no",
		"a.username AS donor_name",
		"d.submitted_at",
	)

	query, args, err := psql().
		Select(columns...).
		From(foodItemTableName+" i").
		Join(donationTableName+" d ON d.id = i.donation_id").
		Join(accountTableName+" a ON a.id = d.donor_id").
		OrderBy("d.submitted_at DESC", "i.created_at", "i.id").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate list items query: %w", err)
	}

	items := make([]*types.FoodItemListing, 0, limit)
	err = pgxscan.Select(ctx, r.db, &items, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list food items: %w", err)
	}

	return items, nil
}

// UpdateStatus moves an item to status under a row lock and returns the
// previous status. Setting the current status again changes nothing.
func (r *FoodItemRepository) UpdateStatus(ctx context.Context, itemID string, status types.FoodItemStatus) (types.FoodItemStatus, bool, error) {
	var previous types.FoodItemStatus
	changed := false

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		query, args, err := psql().
			Select("status").
			From(foodItemTableName).
			Where(sq.Eq{"id": itemID}).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate lock item query: %w", err)
		}

		err = pgxscan.Get(ctx, tx, &previous, query, args...)
		if err != nil {
			if pgxscan.NotFound(err) {
				return types.ErrFoodItemNotFound
			}
			return fmt.Errorf("failed to lock food item %s: %w", itemID, err)
		}

		if previous == status {
			return nil
		}
		if !previous.CanTransitionTo(status) {
			return types.ErrInvalidTransition
		}

		query, args, err = psql().
			Update(foodItemTableName).
			Set("status", status).
			Set("updated_at", time.Now()).
			Where(sq.Eq{"id": itemID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate update item status query: %w", err)
		}

		_, err = tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update food item status: %w", err)
		}

		changed = true
		return nil
	})

	return previous, changed, err
}

// PhotoKeysByDonor lists every stored photo across a donor's donations.
func (r *FoodItemRepository) PhotoKeysByDonor(ctx context.Context, donorID string) ([]string, error) {
	return photoKeys(ctx, r.db, sq.Eq{"d.donor_id": donorID})
}

func photoKeys(ctx context.Context, q pgxscan.Querier, pred any) ([]string, error) {
	query, args, err := psql().
		Select("i.photo_key").
		From(foodItemTableName + " i").
		Join(donationTableName + " d ON d.id = i.donation_id").
		Where(pred).
		Where(sq.NotEq{"i.photo_key": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate photo keys query: %w", err)
	}

	keys := make([]string, 0)
	err = pgxscan.Select(ctx, q, &keys, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch photo keys: %w", err)
	}

	return keys, nil
}

func insertFoodItems(ctx context.Context, tx pgx.Tx, donationID string, items []*types.FoodItem, now time.Time) error {
	if len(items) == 0 {
		return nil
	}

	builder := psql().Insert(foodItemTableName).Columns(foodItemColumns...)
	for _, item := range items {
		if item.ID == "" {
			item.ID = utils.NanoID()
		}
		if item.Status == "" {
			item.Status = types.FoodItemStatusPending
		}
		item.DonationID = donationID
		item.CreatedAt = now
		item.UpdatedAt = now

		values := utils.StructToMap(item)
		row := make([]any, len(foodItemColumns))
		for i, column := range foodItemColumns {
			row[i] = values[column]
		}
		builder = builder.Values(row...)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert items query: %w", err)
	}

	_, err = tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert food items: %w", err)
	}

	return nil
}
