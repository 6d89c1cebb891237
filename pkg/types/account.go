package types

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID                string    `db:"id" json:"id"`
	Username          string    `db:"username" json:"username"`
	Email             string    `db:"email" json:"email"`
	PasswordHash      string    `db:"password_hash" json:"-"`
	IsStaff           bool      `db:"is_staff" json:"is_staff"`
	IsActive          bool      `db:"is_active" json:"is_active"`
	EmailVerified     bool      `db:"email_verified" json:"email_verified"`
	VerificationToken uuid.UUID `db:"verification_token" json:"-"`
	TokenCreatedAt    time.Time `db:"token_created_at" json:"-"`
	DateJoined        time.Time `db:"date_joined" json:"date_joined"`
	UpdatedAt         time.Time `db:"updated_at" json:"-"`
}

// VerificationExpired reports whether the account's verification token is
// older than ttl at the given instant.
func (a *Account) VerificationExpired(now time.Time, ttl time.Duration) bool {
	return now.After(a.TokenCreatedAt.Add(ttl))
}
