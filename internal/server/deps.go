package server

import (
	"context"
	"time"

	"foodshare/internal/store"
	"foodshare/pkg/types"

	"github.com/google/uuid"
)

// The interfaces below are satisfied by the repositories in internal/store.

type AccountStore interface {
	Account(ctx context.Context, accountID string) (*types.Account, error)
	AccountByEmail(ctx context.Context, email string) (*types.Account, error)
	AccountByVerificationToken(ctx context.Context, token uuid.UUID) (*types.Account, error)
	Donor(ctx context.Context, accountID string) (*types.Account, error)
	Donors(ctx context.Context) ([]*types.Account, error)
	CreateAccount(ctx context.Context, account *types.Account) error
	UpdateAccount(ctx context.Context, account *types.Account) error
	MarkEmailVerified(ctx context.Context, accountID string) error
	RotateVerificationToken(ctx context.Context, accountID string) (uuid.UUID, time.Time, error)
	SetActive(ctx context.Context, accountID string, active bool) error
	DeleteAccount(ctx context.Context, accountID string) error
	UsernameTaken(ctx context.Context, username, excludeID string) (bool, error)
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
}

type DonationStore interface {
	CreateDonation(ctx context.Context, donation *types.Donation, items []*types.FoodItem) error
	Donation(ctx context.Context, donationNo string) (*types.DonationWithDonor, error)
	CountDonations(ctx context.Context, filter store.DonationFilter) (int, error)
	ListDonations(ctx context.Context, filter store.DonationFilter, limit, offset int) ([]*types.DonationWithDonor, error)
	UpdateStatus(ctx context.Context, donationNo string, status types.DonationStatus) (types.DonationStatus, bool, error)
	UpdateDonation(ctx context.Context, donation *types.Donation, items []*types.FoodItem) ([]string, error)
	DeleteDonation(ctx context.Context, donationNo string) ([]string, error)
}

type FoodItemStore interface {
	ItemsByDonation(ctx context.Context, donationID string) ([]*types.FoodItem, error)
	CountItems(ctx context.Context) (int, error)
	ListItems(ctx context.Context, limit, offset int) ([]*types.FoodItemListing, error)
	UpdateStatus(ctx context.Context, itemID string, status types.FoodItemStatus) (types.FoodItemStatus, bool, error)
	PhotoKeysByDonor(ctx context.Context, donorID string) ([]string, error)
}

type StatsStore interface {
	AccountCounts(ctx context.Context) (types.AccountCounts, error)
	DonationStatusCounts(ctx context.Context, donorID string) (map[types.DonationStatus]int, error)
	FoodItemTotals(ctx context.Context) (types.FoodItemTotals, error)
	CategoryCounts(ctx context.Context) ([]types.CategoryCount, error)
	MonthlyDonationCounts(ctx context.Context, since time.Time) ([]types.MonthCount, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

var (
	_ AccountStore  = (*store.AccountRepository)(nil)
	_ DonationStore = (*store.DonationRepository)(nil)
	_ FoodItemStore = (*store.FoodItemRepository)(nil)
	_ StatsStore    = (*store.StatsRepository)(nil)
)
