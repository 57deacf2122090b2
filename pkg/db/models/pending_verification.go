package models

import (
	"time"

	"github.com/google/uuid"
)

// PendingVerification holds an unconfirmed signup: the hashed credentials plus
// the one-time code that proves control of the email. At most one row exists
// per email; a repeated signup refreshes OTP and ExpiresAt in place.
type PendingVerification struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	OTP          string    `gorm:"column:otp;not null"`
	ExpiresAt    time.Time `gorm:"column:expires_at;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
