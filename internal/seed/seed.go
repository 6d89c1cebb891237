package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodshare/internal/store"
	"foodshare/internal/utils"
	"foodshare/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type Accounts interface {
	AccountByUsername(ctx context.Context, username string) (*types.Account, error)
	CreateAccount(ctx context.Context, account *types.Account) error
}

type Donations interface {
	CountDonations(ctx context.Context, filter store.DonationFilter) (int, error)
	CreateDonation(ctx context.Context, donation *types.Donation, items []*types.FoodItem) error
}

type item struct {
	name      string
	category  types.FoodCategory
	quantity  int
	condition types.FoodCondition
	expiresIn time.Duration
}

type donation struct {
	method   types.DeliveryMethod
	location string
	slot     string
	remarks  string
	items    []item
}

type donor struct {
	username  string
	donations []donation
}

const day = 24 * time.Hour

// Demo donors and the donations they make on first seed. Donors that already
// exist are left alone, as are donors who already have donations.
var donors = []donor{
	{
		username: "maria",
		donations: []donation{
			{
				method:   types.DeliveryMethodSelf,
				location: "Central depot, Gate 2",
				items: []item{
					{"Basmati rice 5kg", types.FoodCategoryPackaged, 2, types.FoodConditionNew, 180 * day},
					{"Chickpeas", types.FoodCategoryCanned, 6, types.FoodConditionNew, 365 * day},
				},
			},
			{
				method:  types.DeliveryMethodPickup,
				slot:    "10:30",
				remarks: "Side entrance, ring twice",
				items: []item{
					{"Orange juice 1L", types.FoodCategoryBeverages, 4, types.FoodConditionNearExpiry, 5 * day},
				},
			},
		},
	},
	{
		username: "tomas",
		donations: []donation{
			{
				method: types.DeliveryMethodPickup,
				slot:   "16:00",
				items: []item{
					{"Granola bars", types.FoodCategorySnacks, 24, types.FoodConditionNew, 90 * day},
					{"Tomato soup", types.FoodCategoryCanned, 8, types.FoodConditionNew, 400 * day},
					{"Baby formula", types.FoodCategoryOther, 1, types.FoodConditionNearExpiry, 10 * day},
				},
			},
		},
	},
	{
		username:  "aisha",
		donations: nil,
	},
}

// Demo creates the demo donors, all sharing password, and their donations.
func Demo(ctx context.Context, logger *logrus.Logger, accounts Accounts, donations Donations, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, d := range donors {
		account, err := accounts.AccountByUsername(ctx, d.username)
		switch {
		case errors.Is(err, types.ErrAccountNotFound):
			account = &types.Account{
				Username:      d.username,
				Email:         d.username + "@example.org",
				PasswordHash:  hash,
				IsActive:      true,
				EmailVerified: true,
			}
			err = accounts.CreateAccount(ctx, account)
			if err != nil {
				return fmt.Errorf("failed to create donor %s: %w", d.username, err)
			}
			logger.WithField("username", d.username).Info("created demo donor")
		case err != nil:
			return fmt.Errorf("failed to look up donor %s: %w", d.username, err)
		}

		existing, err := donations.CountDonations(ctx, store.DonationFilter{DonorID: account.ID})
		if err != nil {
			return fmt.Errorf("failed to count donations for %s: %w", d.username, err)
		}
		if existing > 0 {
			logger.WithField("username", d.username).WithField("donations", existing).Info("donor already has donations, skipping")
			continue
		}

		for i, spec := range d.donations {
			row, items := build(account, spec, now.AddDate(0, 0, i+1))
			err = donations.CreateDonation(ctx, row, items)
			if err != nil {
				return fmt.Errorf("failed to create donation for %s: %w", d.username, err)
			}
			logger.WithField("username", d.username).WithField("donation_no", row.DonationNo).Info("created demo donation")
		}
	}

	return nil
}

func build(account *types.Account, spec donation, slotDay time.Time) (*types.Donation, []*types.FoodItem) {
	row := &types.Donation{
		DonorID:        account.ID,
		Contact:        "+1 555 0100",
		Address:        "12 " + strings.ToUpper(account.Username[:1]) + account.Username[1:] + " Street",
		DeliveryMethod: spec.method,
		Remarks:        spec.remarks,
	}

	switch spec.method {
	case types.DeliveryMethodPickup:
		date := time.Date(slotDay.Year(), slotDay.Month(), slotDay.Day(), 0, 0, 0, 0, time.UTC)
		row.PreferredDate = &date
		row.PreferredTime = utils.StringPtr(spec.slot)
	case types.DeliveryMethodSelf:
		row.DropoffLocation = utils.StringPtr(spec.location)
	}

	items := make([]*types.FoodItem, 0, len(spec.items))
	for _, it := range spec.items {
		items = append(items, &types.FoodItem{
			ID:             utils.NanoID(),
			Name:           it.name,
			Category:       it.category,
			Quantity:       it.quantity,
			Condition:      it.condition,
			ExpirationDate: slotDay.Add(it.expiresIn).UTC().Truncate(day),
		})
	}

	return row, items
}

// Staff creates a verified staff account.
func Staff(ctx context.Context, accounts Accounts, username, email, password string) (*types.Account, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, errors.New("username, email and password are required")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	account := &types.Account{
		Username:      username,
		Email:         email,
		PasswordHash:  hash,
		IsStaff:       true,
		IsActive:      true,
		EmailVerified: true,
	}

	err = accounts.CreateAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	return account, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
