package types

// Form posts, decoded with go-playground/form.

type SignupForm struct {
	Username        string `form:"username"`
	Email           string `form:"email"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirmPassword"`
}

type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	Next     string `form:"next"`
}

type ResendVerificationForm struct {
	Email string `form:"email"`
}

type DonorForm struct {
	Username string `form:"username"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

type ProfileForm struct {
	Username        string `form:"username"`
	Email           string `form:"email"`
	CurrentPassword string `form:"current_password"`
	NewPassword     string `form:"new_password"`
}

// JSON bodies.

type FoodItemInput struct {
	Name           string `json:"name"`
	Category       string `json:"category"`
	Quantity       int    `json:"quantity"`
	Condition      string `json:"condition"`
	ExpirationDate string `json:"expiration_date"`
	Photo          string `json:"photo,omitempty"`
}

type DonationInput struct {
	Contact         string          `json:"contact"`
	Address         string          `json:"address"`
	DeliveryMethod  string          `json:"delivery_method"`
	PreferredDate   string          `json:"preferred_date"`
	PreferredTime   string          `json:"preferred_time"`
	DropoffLocation string          `json:"dropoff_location"`
	Remarks         string          `json:"remarks"`
	FoodItems       []FoodItemInput `json:"food_items"`
}

// DonationUpdateInput carries a staff edit. Nil fields keep their current
// value; a non-nil FoodItems replaces every item on the donation.
type DonationUpdateInput struct {
	Contact         *string          `json:"contact"`
	Address         *string          `json:"address"`
	DeliveryMethod  *string          `json:"delivery_method"`
	PreferredDate   *string          `json:"preferred_date"`
	PreferredTime   *string          `json:"preferred_time"`
	DropoffLocation *string          `json:"dropoff_location"`
	Remarks         *string          `json:"remarks"`
	FoodItems       *[]FoodItemInput `json:"food_items"`
}

type StatusInput struct {
	Status string `json:"status"`
}

type ActiveInput struct {
	IsActive bool `json:"is_active"`
}
