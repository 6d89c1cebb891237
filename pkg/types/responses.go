package types

import "time"

// Response shapes served by the JSON API.

type Pagination struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

type DonationSummary struct {
	DonationNo     string         `json:"donation_no"`
	SubmissionDate string         `json:"submission_date"`
	Status         DonationStatus `json:"status"`
}

type DonationListRow struct {
	DonationNo  string         `json:"donation_no"`
	DonorName   string         `json:"donor_name"`
	DateCreated string         `json:"date_created"`
	Status      DonationStatus `json:"status"`
}

type FoodItemDetail struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Category       string         `json:"category"`
	Quantity       int            `json:"quantity"`
	Condition      string         `json:"condition"`
	ExpirationDate string         `json:"expiration_date"`
	Status         FoodItemStatus `json:"status"`
	Photo          *string        `json:"photo"`
}

type DonationDetail struct {
	DonationNo      string           `json:"donation_no"`
	Status          DonationStatus   `json:"status"`
	SubmissionDate  string           `json:"submission_date"`
	Contact         string           `json:"contact"`
	Address         string           `json:"address"`
	DeliveryMethod  string           `json:"delivery_method"`
	PreferredDate   *string          `json:"preferred_date"`
	PreferredTime   *string          `json:"preferred_time"`
	DropoffLocation *string          `json:"dropoff_location"`
	Remarks         string           `json:"remarks"`
	FoodItems       []FoodItemDetail `json:"food_items"`
}

// FoodItemRow is the staff inventory view of an item. Category and condition
// are the raw enum values so clients can filter on them.
type FoodItemRow struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Category       FoodCategory   `json:"category"`
	Quantity       int            `json:"quantity"`
	Condition      FoodCondition  `json:"condition"`
	ExpirationDate string         `json:"expiration_date"`
	PhotoURL       *string        `json:"photo_url"`
	DonationNo     string         `json:"donation_no"`
	DonorName      string         `json:"donor_name"`
	Status         FoodItemStatus `json:"status"`
}

type DonorDashboard struct {
	TotalDonations     int               `json:"total_donations"`
	PendingDonations   int               `json:"pending_donations"`
	CompletedDonations int               `json:"completed_donations"`
	RecentDonations    []DonationSummary `json:"recent_donations"`
}

type CategoryShare struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type MonthlyTrend struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type AdminDashboard struct {
	TotalAdmins             int               `json:"total_admins"`
	TotalDonors             int               `json:"total_donors"`
	PendingCount            int               `json:"pending_count"`
	TotalFoodItems          int               `json:"total_food_items"`
	RedistributedCount      int               `json:"redistributed_count"`
	RedistributedPercentage float64           `json:"redistributed_percentage"`
	TotalQuantity           int               `json:"total_quantity"`
	CategoryDistribution    []CategoryShare   `json:"category_distribution"`
	MonthlyTrends           []MonthlyTrend    `json:"monthly_trends"`
	Donations               []DonationListRow `json:"donations"`
	PageRange               []int             `json:"page_range"`
	TotalPages              int               `json:"total_pages"`
	CurrentPage             int               `json:"current_page"`
}

type DonorRow struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	IsActive   bool      `json:"is_active"`
	DateJoined time.Time `json:"date_joined"`
}
