package types

import "time"

type FoodCategory string

const (
	FoodCategoryPackaged  FoodCategory = "packaged"
	FoodCategoryCanned    FoodCategory = "canned"
	FoodCategoryBeverages FoodCategory = "beverages"
	FoodCategorySnacks    FoodCategory = "snacks"
	FoodCategoryOther     FoodCategory = "other"
)

func (c FoodCategory) Valid() bool {
	switch c {
	case FoodCategoryPackaged, FoodCategoryCanned, FoodCategoryBeverages, FoodCategorySnacks, FoodCategoryOther:
		return true
	}
	return false
}

func (c FoodCategory) Label() string {
	switch c {
	case FoodCategoryPackaged:
		return "Packaged Foods"
	case FoodCategoryCanned:
		return "Canned Foods"
	case FoodCategoryBeverages:
		return "Beverages"
	case FoodCategorySnacks:
		return "Snacks"
	case FoodCategoryOther:
		return "Other"
	}
	return string(c)
}

type FoodCondition string

const (
	FoodConditionNew        FoodCondition = "new"
	FoodConditionNearExpiry FoodCondition = "near"
)

func (c FoodCondition) Valid() bool {
	return c == FoodConditionNew || c == FoodConditionNearExpiry
}

func (c FoodCondition) Label() string {
	if c == FoodConditionNew {
		return "New/Unused"
	}
	return "Near Expiry"
}

type FoodItemStatus string

const (
	FoodItemStatusPending       FoodItemStatus = "pending"
	FoodItemStatusOnHold        FoodItemStatus = "on_hold"
	FoodItemStatusRedistributed FoodItemStatus = "redistributed"
	FoodItemStatusDiscarded     FoodItemStatus = "discarded"
)

var foodItemTransitions = map[FoodItemStatus][]FoodItemStatus{
	FoodItemStatusPending: {FoodItemStatusOnHold, FoodItemStatusRedistributed, FoodItemStatusDiscarded},
	FoodItemStatusOnHold:  {FoodItemStatusPending, FoodItemStatusRedistributed, FoodItemStatusDiscarded},
}

func (s FoodItemStatus) Valid() bool {
	switch s {
	case FoodItemStatusPending, FoodItemStatusOnHold, FoodItemStatusRedistributed, FoodItemStatusDiscarded:
		return true
	}
	return false
}

// CanTransitionTo reports whether an item in status s may move to next.
// Redistributed and discarded items are terminal.
func (s FoodItemStatus) CanTransitionTo(next FoodItemStatus) bool {
	for _, allowed := range foodItemTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type FoodItem struct {
	ID             string         `db:"id"`
	DonationID     string         `db:"donation_id"`
	Name           string         `db:"name"`
	Category       FoodCategory   `db:"category"`
	Quantity       int            `db:"quantity"`
	Condition      FoodCondition  `db:"condition"`
	ExpirationDate time.Time      `db:"expiration_date"`
	PhotoKey       *string        `db:"photo_key"`
	Status         FoodItemStatus `db:"status"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// FoodItemListing is a food item joined with its donation number and the
// donor's username, as shown on the staff inventory.
type FoodItemListing struct {
	FoodItem
	DonationNo  string    `db:"donation_no"`
	DonorName   string    `db:"donor_name"`
	SubmittedAt time.Time `db:"submitted_at"`
}
