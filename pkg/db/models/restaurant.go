package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Restaurant belongs to an Owner profile. ImageURL points at the blob store.
type Restaurant struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID        uuid.UUID       `gorm:"column:owner_id;type:uuid;not null;index"`
	Name           string          `gorm:"column:name;not null"`
	Email          *string         `gorm:"column:email"`
	Phone          *string         `gorm:"column:phone"`
	Address        *string         `gorm:"column:address"`
	ImageURL       *string         `gorm:"column:image_url"`
	MinOrderAmount decimal.Decimal `gorm:"column:min_order_amount;type:numeric(10,2);not null;default:0"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
