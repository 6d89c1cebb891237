package seed

import (
	"context"
	"errors"
	"strings"
	"testing"

	"foodshare/internal/store"
	"foodshare/pkg/types"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeAccounts struct {
	byName map[string]*types.Account
	err    error
}

func (f *fakeAccounts) AccountByUsername(_ context.Context, username string) (*types.Account, error) {
	if a, ok := f.byName[strings.ToLower(username)]; ok {
		return a, nil
	}
	return nil, types.ErrAccountNotFound
}

func (f *fakeAccounts) CreateAccount(_ context.Context, a *types.Account) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byName[strings.ToLower(a.Username)]; ok {
		return types.ErrDuplicateUsername
	}
	a.ID = "id-" + a.Username
	f.byName[strings.ToLower(a.Username)] = a
	return nil
}

type fakeDonations struct {
	created map[string][]*types.Donation
	items   int
}

func (f *fakeDonations) CountDonations(_ context.Context, filter store.DonationFilter) (int, error) {
	return len(f.created[filter.DonorID]), nil
}

func (f *fakeDonations) CreateDonation(_ context.Context, d *types.Donation, items []*types.FoodItem) error {
	f.created[d.DonorID] = append(f.created[d.DonorID], d)
	f.items += len(items)
	return nil
}

func TestDemoIsIdempotent(t *testing.T) {
	logger, _ := test.NewNullLogger()
	accounts := &fakeAccounts{byName: make(map[string]*types.Account)}
	donations := &fakeDonations{created: make(map[string][]*types.Donation)}

	require.NoError(t, Demo(context.Background(), logger, accounts, donations, "Passw0rd!"))

	assert.Len(t, accounts.byName, 3)
	assert.Len(t, donations.created["id-maria"], 2)
	assert.Len(t, donations.created["id-tomas"], 1)
	assert.Equal(t, 6, donations.items)

	maria := accounts.byName["maria"]
	assert.True(t, maria.EmailVerified)
	assert.False(t, maria.IsStaff)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(maria.PasswordHash), []byte("Passw0rd!")))

	for _, d := range donations.created["id-tomas"] {
		require.NotNil(t, d.PreferredDate)
		require.NotNil(t, d.PreferredTime)
		assert.Nil(t, d.DropoffLocation)
	}

	require.NoError(t, Demo(context.Background(), logger, accounts, donations, "Passw0rd!"))
	assert.Len(t, donations.created["id-maria"], 2)
	assert.Equal(t, 6, donations.items)
}

func TestStaff(t *testing.T) {
	accounts := &fakeAccounts{byName: make(map[string]*types.Account)}

	account, err := Staff(context.Background(), accounts, " admin ", "admin@example.org", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "admin", account.Username)
	assert.True(t, account.IsStaff)
	assert.True(t, account.EmailVerified)

	_, err = Staff(context.Background(), accounts, "admin", "other@example.org", "s3cret!")
	assert.ErrorIs(t, err, types.ErrDuplicateUsername)

	_, err = Staff(context.Background(), accounts, "", "x@example.org", "s3cret!")
	assert.Error(t, err)

	accounts.err = errors.New("connection refused")
	_, err = Staff(context.Background(), accounts, "ops", "ops@example.org", "s3cret!")
	assert.Error(t, err)
}
