package types

import "errors"

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDonationNotFound = errors.New("donation not found")
	ErrFoodItemNotFound = errors.New("food item not found")

	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")

	ErrInvalidTransition = errors.New("invalid status transition")
)
