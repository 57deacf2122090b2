package owners

import (
	"github.com/google/uuid"
	"github.com/tablemate-app/tablemate-backend/pkg/db/models"
)

// CreateOwnerDTO carries the fields needed to persist a new owner profile.
type CreateOwnerDTO struct {
	Email    string
	Name     string
	Phone    *string
	Address  *string
	ImageURL *string
}

// ToModel maps the DTO onto the persistence model. Status starts false and
// flips on activation.
func (d CreateOwnerDTO) ToModel() *models.Owner {
	return &models.Owner{
		Email:    d.Email,
		Name:     d.Name,
		Phone:    d.Phone,
		Address:  d.Address,
		ImageURL: d.ImageURL,
	}
}

// CreateOwnerRequest attaches an owner profile to an existing account.
type CreateOwnerRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Name     string  `json:"name" validate:"required"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

// UpdateOwnerRequest carries partial owner updates. Status true activates the
// profile and unblocks login.
type UpdateOwnerRequest struct {
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
	Status   *bool   `json:"status,omitempty"`
}

// OwnerResponse is the outward shape of an owner profile.
type OwnerResponse struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Phone    *string   `json:"phone,omitempty"`
	Address  *string   `json:"address,omitempty"`
	ImageURL *string   `json:"image_url,omitempty"`
	Status   bool      `json:"status"`
}

// FromModel maps an owner model to its outward response.
func FromModel(owner *models.Owner) OwnerResponse {
	return OwnerResponse{
		ID:       owner.ID,
		Email:    owner.Email,
		Name:     owner.Name,
		Phone:    owner.Phone,
		Address:  owner.Address,
		ImageURL: owner.ImageURL,
		Status:   owner.Status,
	}
}
