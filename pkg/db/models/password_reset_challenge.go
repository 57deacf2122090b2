package models

import (
	"time"

	"github.com/google/uuid"
)

// PasswordResetChallenge is a single-use code for the forgot-password flow.
// Multiple outstanding challenges per email are allowed; each is matched on
// email+code and deleted the moment it validates. Expired leftovers are
// removed by the cron sweep.
type PasswordResetChallenge struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string    `gorm:"type:text;not null;index"`
	OTP       string    `gorm:"column:otp;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
