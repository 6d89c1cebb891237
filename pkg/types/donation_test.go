package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDonationNo(t *testing.T) {
	assert.Equal(t, "DON-001", FormatDonationNo(1))
	assert.Equal(t, "DON-042", FormatDonationNo(42))
	assert.Equal(t, "DON-999", FormatDonationNo(999))
	assert.Equal(t, "DON-1234", FormatDonationNo(1234))
}

func TestParseDonationNo(t *testing.T) {
	n, err := ParseDonationNo("DON-007")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	n, err = ParseDonationNo(FormatDonationNo(1001))
	require.NoError(t, err)
	assert.Equal(t, int64(1001), n)

	for _, bad := range []string{"", "DON-", "DON-abc", "don-001", "DON-000", "X-001", "DON-01a"} {
		_, err := ParseDonationNo(bad)
		assert.Error(t, err, bad)
	}
}

func TestDonationStatusTransitions(t *testing.T) {
	allowed := map[DonationStatus][]DonationStatus{
		DonationStatusPending:   {DonationStatusApproved, DonationStatusRejected},
		DonationStatusApproved:  {DonationStatusCompleted, DonationStatusRejected},
		DonationStatusRejected:  {},
		DonationStatusCompleted: {},
	}

	for from, tos := range allowed {
		for _, to := range AllDonationStatuses {
			want := false
			for _, ok := range tos {
				if ok == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	assert.False(t, DonationStatus("archived").Valid())
	assert.False(t, DonationStatus("archived").CanTransitionTo(DonationStatusPending))
}

func TestDeliveryMethodLabels(t *testing.T) {
	assert.Equal(t, "NGO Pickup", DeliveryMethodPickup.Label())
	assert.Equal(t, "Self Delivery", DeliveryMethodSelf.Label())
	assert.False(t, DeliveryMethod("drone").Valid())
}

func TestFoodItemStatusTransitions(t *testing.T) {
	assert.True(t, FoodItemStatusPending.CanTransitionTo(FoodItemStatusOnHold))
	assert.True(t, FoodItemStatusPending.CanTransitionTo(FoodItemStatusRedistributed))
	assert.True(t, FoodItemStatusOnHold.CanTransitionTo(FoodItemStatusPending))
	assert.True(t, FoodItemStatusOnHold.CanTransitionTo(FoodItemStatusDiscarded))

	assert.False(t, FoodItemStatusPending.CanTransitionTo(FoodItemStatusPending))
	assert.False(t, FoodItemStatusRedistributed.CanTransitionTo(FoodItemStatusPending))
	assert.False(t, FoodItemStatusDiscarded.CanTransitionTo(FoodItemStatusOnHold))
}

func TestFoodLabels(t *testing.T) {
	assert.Equal(t, "Packaged Foods", FoodCategoryPackaged.Label())
	assert.Equal(t, "Canned Foods", FoodCategoryCanned.Label())
	assert.Equal(t, "New/Unused", FoodConditionNew.Label())
	assert.Equal(t, "Near Expiry", FoodConditionNearExpiry.Label())
	assert.False(t, FoodCategory("frozen").Valid())
}

func TestVerificationExpired(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := &Account{TokenCreatedAt: created}

	assert.False(t, a.VerificationExpired(created.Add(23*time.Hour), 24*time.Hour))
	assert.False(t, a.VerificationExpired(created.Add(24*time.Hour), 24*time.Hour))
	assert.True(t, a.VerificationExpired(created.Add(24*time.Hour+time.Second), 24*time.Hour))
}
