package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tablemate-app/tablemate-backend/pkg/enums"
)

// Account is a confirmed, login-capable identity. Rows are created only by
// promoting a PendingVerification after a successful OTP check. ProfileID is
// populated once an owner or customer profile is attached to the same email.
type Account struct {
	ID           uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string            `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string            `gorm:"column:password_hash;not null"`
	Role         enums.AccountRole `gorm:"column:role;type:text;not null"`
	ProfileID    *uuid.UUID        `gorm:"column:profile_id;type:uuid"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
