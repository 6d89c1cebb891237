package types

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusApproved  DonationStatus = "approved"
	DonationStatusRejected  DonationStatus = "rejected"
	DonationStatusCompleted DonationStatus = "completed"
)

var AllDonationStatuses = []DonationStatus{
	DonationStatusPending,
	DonationStatusApproved,
	DonationStatusRejected,
	DonationStatusCompleted,
}

var donationTransitions = map[DonationStatus][]DonationStatus{
	DonationStatusPending:  {DonationStatusApproved, DonationStatusRejected},
	DonationStatusApproved: {DonationStatusCompleted, DonationStatusRejected},
}

func (s DonationStatus) Valid() bool {
	switch s {
	case DonationStatusPending, DonationStatusApproved, DonationStatusRejected, DonationStatusCompleted:
		return true
	}
	return false
}

func (s DonationStatus) Label() string {
	switch s {
	case DonationStatusPending:
		return "Pending"
	case DonationStatusApproved:
		return "Approved"
	case DonationStatusRejected:
		return "Rejected"
	case DonationStatusCompleted:
		return "Completed"
	}
	return string(s)
}

// CanTransitionTo reports whether a donation in status s may move to next.
// Rejected and completed donations are terminal.
func (s DonationStatus) CanTransitionTo(next DonationStatus) bool {
	for _, allowed := range donationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type DeliveryMethod string

const (
	DeliveryMethodPickup DeliveryMethod = "ngo"
	DeliveryMethodSelf   DeliveryMethod = "self"
)

func (m DeliveryMethod) Valid() bool {
	return m == DeliveryMethodPickup || m == DeliveryMethodSelf
}

func (m DeliveryMethod) Label() string {
	switch m {
	case DeliveryMethodPickup:
		return "NGO Pickup"
	case DeliveryMethodSelf:
		return "Self Delivery"
	}
	return string(m)
}

type Donation struct {
	ID              string         `db:"id"`
	DonationNo      string         `db:"donation_no"`
	DonorID         string         `db:"donor_id"`
	Status          DonationStatus `db:"status"`
	SubmittedAt     time.Time      `db:"submitted_at"`
	Contact         string         `db:"contact"`
	Address         string         `db:"address"`
	DeliveryMethod  DeliveryMethod `db:"delivery_method"`
	PreferredDate   *time.Time     `db:"preferred_date"`
	PreferredTime   *string        `db:"preferred_time"`
	DropoffLocation *string        `db:"dropoff_location"`
	Remarks         string         `db:"remarks"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// DonationWithDonor is a donation row joined with the donor's username.
type DonationWithDonor struct {
	Donation
	DonorName string `db:"donor_name"`
}

const donationNoPrefix = "DON-"

var donationNoReg = regexp.MustCompile(`^DON-(\d+)$`)

// FormatDonationNo renders a sequence value as a human readable donation
// number, zero padded to three digits.
func FormatDonationNo(n int64) string {
	return fmt.Sprintf("%s%03d", donationNoPrefix, n)
}

// ParseDonationNo returns the numeric part of a donation number.
func ParseDonationNo(s string) (int64, error) {
	m := donationNoReg.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("malformed donation number %q", s)
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("malformed donation number %q", s)
	}

	return n, nil
}
