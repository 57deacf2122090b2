package models

import (
	"time"

	"github.com/google/uuid"
)

// Owner is the restaurant-owner profile linked one-to-one to an Account via
// email. Status is a secondary activation gate: a false value blocks login
// even when the account itself is OTP-confirmed.
type Owner struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string    `gorm:"type:text;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null"`
	Phone     *string   `gorm:"column:phone"`
	Address   *string   `gorm:"column:address"`
	ImageURL  *string   `gorm:"column:image_url"`
	Status    bool      `gorm:"column:status;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
