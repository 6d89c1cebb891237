package server

import (
	"fmt"
	"math"
	"strings"
	"time"

	"foodshare/internal/utils"
	"foodshare/pkg/types"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

var fieldTitle = cases.Title(language.English)

// validationError is a rejected submission: Field names the offending input
// and msg is shown to the user as is.
type validationError struct {
	Field string
	msg   string
}

func (e *validationError) Error() string {
	return e.msg
}

func invalid(field, format string, args ...any) error {
	return &validationError{Field: field, msg: fmt.Sprintf(format, args...)}
}

// fieldLabel turns delivery_method into "Delivery Method".
func fieldLabel(field string) string {
	return fieldTitle.String(strings.ReplaceAll(field, "_", " "))
}

// itemDraft is a validated food item awaiting insertion, with the photo data
// URL the donor attached to it, if any.
type itemDraft struct {
	item  *types.FoodItem
	photo string
}

// donationFromInput checks the donation level fields of a submission and
// builds the row to insert. Only the fields of the chosen delivery method
// are kept.
func donationFromInput(in *types.DonationInput) (*types.Donation, error) {
	required := []struct {
		field string
		value string
	}{
		{"contact", in.Contact},
		{"address", in.Address},
		{"delivery_method", in.DeliveryMethod},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, invalid(r.field, "%s is required", fieldLabel(r.field))
		}
	}

	method := types.DeliveryMethod(strings.TrimSpace(in.DeliveryMethod))
	if !method.Valid() {
		return nil, invalid("delivery_method", "Invalid delivery method")
	}

	donation := &types.Donation{
		Contact:        strings.TrimSpace(in.Contact),
		Address:        strings.TrimSpace(in.Address),
		DeliveryMethod: method,
		Remarks:        strings.TrimSpace(in.Remarks),
	}

	switch method {
	case types.DeliveryMethodPickup:
		rawDate, rawTime := strings.TrimSpace(in.PreferredDate), strings.TrimSpace(in.PreferredTime)
		if rawDate == "" || rawTime == "" {
			return nil, invalid("preferred_date", "Pickup date and time are required")
		}

		date, err := time.Parse(dateLayout, rawDate)
		if err != nil {
			return nil, invalid("preferred_date", "Pickup date must be in YYYY-MM-DD format")
		}
		slot, err := time.Parse(timeLayout, rawTime)
		if err != nil || len(rawTime) != len(timeLayout) {
			return nil, invalid("preferred_time", "Pickup time must be in HH:MM format")
		}

		donation.PreferredDate = &date
		donation.PreferredTime = utils.StringPtr(slot.Format(timeLayout))
	case types.DeliveryMethodSelf:
		location := strings.TrimSpace(in.DropoffLocation)
		if location == "" {
			return nil, invalid("dropoff_location", "Dropoff location is required")
		}
		donation.DropoffLocation = &location
	}

	return donation, nil
}

func itemsFromInput(inputs []types.FoodItemInput) ([]*itemDraft, error) {
	if len(inputs) == 0 {
		return nil, invalid("food_items", "At least one food item is required")
	}

	drafts := make([]*itemDraft, 0, len(inputs))
	for i, in := range inputs {
		n := i + 1

		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, invalid("food_items", "Food item %d: name is required", n)
		}

		category := types.FoodCategory(strings.TrimSpace(in.Category))
		if !category.Valid() {
			return nil, invalid("food_items", "Food item %d: invalid category", n)
		}

		if in.Quantity < 1 {
			return nil, invalid("food_items", "Food item %d: quantity must be at least 1", n)
		}
		if in.Quantity > math.MaxInt32 {
			return nil, invalid("food_items", "Food item %d: quantity is too large", n)
		}

		condition := types.FoodCondition(strings.TrimSpace(in.Condition))
		if !condition.Valid() {
			return nil, invalid("food_items", "Food item %d: invalid condition", n)
		}

		if strings.TrimSpace(in.ExpirationDate) == "" {
			return nil, invalid("food_items", "Food item %d: expiration date is required", n)
		}
		expires, err := time.Parse(dateLayout, strings.TrimSpace(in.ExpirationDate))
		if err != nil {
			return nil, invalid("food_items", "Food item %d: expiration date must be in YYYY-MM-DD format", n)
		}

		drafts = append(drafts, &itemDraft{
			item: &types.FoodItem{
				Name:           name,
				Category:       category,
				Quantity:       in.Quantity,
				Condition:      condition,
				ExpirationDate: expires,
			},
			photo: in.Photo,
		})
	}

	return drafts, nil
}

// mergeDonationUpdate overlays the non-nil fields of an edit onto the
// current donation so the result can be validated like a submission.
func mergeDonationUpdate(current *types.Donation, in *types.DonationUpdateInput) *types.DonationInput {
	merged := &types.DonationInput{
		Contact:        current.Contact,
		Address:        current.Address,
		DeliveryMethod: string(current.DeliveryMethod),
		Remarks:        current.Remarks,
	}
	if current.PreferredDate != nil {
		merged.PreferredDate = current.PreferredDate.Format(dateLayout)
	}
	if current.PreferredTime != nil {
		merged.PreferredTime = *current.PreferredTime
	}
	if current.DropoffLocation != nil {
		merged.DropoffLocation = *current.DropoffLocation
	}

	overlay := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	overlay(&merged.Contact, in.Contact)
	overlay(&merged.Address, in.Address)
	overlay(&merged.DeliveryMethod, in.DeliveryMethod)
	overlay(&merged.PreferredDate, in.PreferredDate)
	overlay(&merged.PreferredTime, in.PreferredTime)
	overlay(&merged.DropoffLocation, in.DropoffLocation)
	overlay(&merged.Remarks, in.Remarks)

	return merged
}
