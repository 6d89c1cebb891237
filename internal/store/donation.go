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

const (
	donationTableName = "foodshare.donations"
	donationNoSeq     = "foodshare.donation_no_seq"
)

var donationColumns = utils.StructTagValues(types.Donation{})

type DonationRepository struct {
	db DB
}

func NewDonationRepository(db DB) *DonationRepository {
	return &DonationRepository{db: db}
}

// DonationFilter narrows donation listings. Zero values match everything.
type DonationFilter struct {
	DonorID string
	Status  types.DonationStatus
}

func (f DonationFilter) apply(b sq.SelectBuilder) sq.SelectBuilder {
	if f.DonorID != "" {
		b = b.Where(sq.Eq{"d.donor_id": f.DonorID})
	}
	if f.Status != "" {
		b = b.Where(sq.Eq{"d.status": f.Status})
	}
	return b
}

// CreateDonation assigns the next donation number and inserts the donation
// with its items in a single transaction. Items without an ID get one.
func (r *DonationRepository) CreateDonation(ctx context.Context, donation *types.Donation, items []*types.FoodItem) error {
	now := time.Now()
	if donation.ID == "" {
		donation.ID = utils.NanoID()
	}
	if donation.Status == "" {
		donation.Status = types.DonationStatusPending
	}
	donation.SubmittedAt = now
	donation.UpdatedAt = now

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var seq int64
		err := tx.QueryRow(ctx, fmt.Sprintf("SELECT nextval('%s')", donationNoSeq)).Scan(&seq)
		if err != nil {
			return fmt.Errorf("failed to allocate donation number: %w", err)
		}
		donation.DonationNo = types.FormatDonationNo(seq)

		query, args, err := psql().
			Insert(donationTableName).
			SetMap(utils.StructToMap(donation)).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate create donation query: %w", err)
		}

		_, err = tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert donation: %w", err)
		}

		return insertFoodItems(ctx, tx, donation.ID, items, now)
	})
	if err != nil {
		donation.DonationNo = ""
		return err
	}

	return nil
}

// Donation fetches a donation by its DON-NNN number.
func (r *DonationRepository) Donation(ctx context.Context, donationNo string) (*types.DonationWithDonor, error) {
	query, args, err := r.selectDonations().
		Where(sq.Eq{"d.donation_no": donationNo}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donation query: %w", err)
	}

	var donation types.DonationWithDonor
	err = pgxscan.Get(ctx, r.db, &donation, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDonationNotFound
		}
		return nil, fmt.Errorf("failed to fetch donation %s: %w", donationNo, err)
	}

	return &donation, nil
}

func (r *DonationRepository) CountDonations(ctx context.Context, filter DonationFilter) (int, error) {
	query, args, err := filter.apply(
		psql().Select("count(*)").From(donationTableName + " d"),
	).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate count donations query: %w", err)
	}

	var count int
	err = pgxscan.Get(ctx, r.db, &count, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count donations: %w", err)
	}

	return count, nil
}

// ListDonations returns one page of donations matching filter, newest first.
func (r *DonationRepository) ListDonations(ctx context.Context, filter DonationFilter, limit, offset int) ([]*types.DonationWithDonor, error) {
	query, args, err := filter.apply(r.selectDonations()).
		OrderBy("d.submitted_at DESC", "d.donation_no DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate list donations query: %w", err)
	}

	donations := make([]*types.DonationWithDonor, 0, limit)
	err = pgxscan.Select(ctx, r.db, &donations, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}

	return donations, nil
}

// UpdateStatus moves a donation to status under a row lock. It reports
// whether the status changed; re-applying the current status is a no-op.
func (r *DonationRepository) UpdateStatus(ctx context.Context, donationNo string, status types.DonationStatus) (types.DonationStatus, bool, error) {
	var previous types.DonationStatus
	changed := false

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		query, args, err := psql().
			Select("status").
			From(donationTableName).
			Where(sq.Eq{"donation_no": donationNo}).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate lock donation query: %w", err)
		}

		err = pgxscan.Get(ctx, tx, &previous, query, args...)
		if err != nil {
			if pgxscan.NotFound(err) {
				return types.ErrDonationNotFound
			}
			return fmt.Errorf("failed to lock donation %s: %w", donationNo, err)
		}

		if previous == status {
			return nil
		}
		if !previous.CanTransitionTo(status) {
			return types.ErrInvalidTransition
		}

		query, args, err = psql().
			Update(donationTableName).
			Set("status", status).
			Set("updated_at", time.Now()).
			Where(sq.Eq{"donation_no": donationNo}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate update status query: %w", err)
		}

		_, err = tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update donation status: %w", err)
		}

		changed = true
		return nil
	})

	return previous, changed, err
}

// UpdateDonation writes the editable fields of donation. When items is not
// nil every existing item is replaced by items; the photo keys of the
// removed items are returned so the caller can clean up storage.
func (r *DonationRepository) UpdateDonation(ctx context.Context, donation *types.Donation, items []*types.FoodItem) ([]string, error) {
	now := time.Now()
	donation.UpdatedAt = now

	var removedKeys []string
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		query, args, err := psql().
			Update(donationTableName).
			SetMap(map[string]any{
				"contact":          donation.Contact,
				"address":          donation.Address,
				"delivery_method":  donation.DeliveryMethod,
				"preferred_date":   donation.PreferredDate,
				"preferred_time":   donation.PreferredTime,
				"dropoff_location": donation.DropoffLocation,
				"remarks":          donation.Remarks,
				"updated_at":       donation.UpdatedAt,
			}).
			Where(sq.Eq{"id": donation.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate update donation query: %w", err)
		}

		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update donation: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return types.ErrDonationNotFound
		}

		if items == nil {
			return nil
		}

		removedKeys, err = photoKeys(ctx, tx, sq.Eq{"i.donation_id": donation.ID})
		if err != nil {
			return err
		}

		query, args, err = psql().
			Delete(foodItemTableName).
			Where(sq.Eq{"donation_id": donation.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate delete items query: %w", err)
		}

		_, err = tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to delete donation items: %w", err)
		}

		return insertFoodItems(ctx, tx, donation.ID, items, now)
	})
	if err != nil {
		return nil, err
	}

	return removedKeys, nil
}

// DeleteDonation removes a donation and its items, returning the photo keys
// the items referenced.
func (r *DonationRepository) DeleteDonation(ctx context.Context, donationNo string) ([]string, error) {
	var keys []string

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		keys, err = photoKeys(ctx, tx, sq.Eq{"d.donation_no": donationNo})
		if err != nil {
			return err
		}

		query, args, err := psql().
			Delete(donationTableName).
			Where(sq.Eq{"donation_no": donationNo}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate delete donation query: %w", err)
		}

		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to delete donation %s: %w", donationNo, err)
		}
		if tag.RowsAffected() == 0 {
			return types.ErrDonationNotFound
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return keys, nil
}

func (r *DonationRepository) selectDonations() sq.SelectBuilder {
	columns := append(utils.PrefixColumns("d", donationColumns), "a.username AS donor_name")
	return psql().
		Select(columns...).
		From(donationTableName + " d").
		Join(accountTableName + " a ON a.id = d.donor_id")
}
