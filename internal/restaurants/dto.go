package restaurants

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tablemate-app/tablemate-backend/pkg/db/models"
)

// CreateRestaurantDTO carries the fields needed to persist a new restaurant.
type CreateRestaurantDTO struct {
	OwnerID        uuid.UUID
	Name           string
	Email          *string
	Phone          *string
	Address        *string
	ImageURL       *string
	MinOrderAmount decimal.Decimal
}

// ToModel maps the DTO onto the persistence model.
func (d CreateRestaurantDTO) ToModel() *models.Restaurant {
	return &models.Restaurant{
		OwnerID:        d.OwnerID,
		Name:           d.Name,
		Email:          d.Email,
		Phone:          d.Phone,
		Address:        d.Address,
		ImageURL:       d.ImageURL,
		MinOrderAmount: d.MinOrderAmount,
	}
}

// CreateRestaurantRequest creates a restaurant under the calling owner.
type CreateRestaurantRequest struct {
	Name           string           `json:"name" validate:"required"`
	Email          *string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string          `json:"phone,omitempty"`
	Address        *string          `json:"address,omitempty"`
	ImageURL       *string          `json:"image_url,omitempty"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount,omitempty"`
}

// UpdateRestaurantRequest carries partial restaurant updates.
type UpdateRestaurantRequest struct {
	Name           *string          `json:"name,omitempty"`
	Email          *string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string          `json:"phone,omitempty"`
	Address        *string          `json:"address,omitempty"`
	ImageURL       *string          `json:"image_url,omitempty"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount,omitempty"`
}

// RestaurantResponse is the outward shape of a restaurant.
type RestaurantResponse struct {
	ID             uuid.UUID       `json:"id"`
	OwnerID        uuid.UUID       `json:"owner_id"`
	Name           string          `json:"name"`
	Email          *string         `json:"email,omitempty"`
	Phone          *string         `json:"phone,omitempty"`
	Address        *string         `json:"address,omitempty"`
	ImageURL       *string         `json:"image_url,omitempty"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount"`
}

// FromModel maps a restaurant model to its outward response.
func FromModel(restaurant *models.Restaurant) RestaurantResponse {
	return RestaurantResponse{
		ID:             restaurant.ID,
		OwnerID:        restaurant.OwnerID,
		Name:           restaurant.Name,
		Email:          restaurant.Email,
		Phone:          restaurant.Phone,
		Address:        restaurant.Address,
		ImageURL:       restaurant.ImageURL,
		MinOrderAmount: restaurant.MinOrderAmount,
	}
}
