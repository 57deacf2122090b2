package customers

import (
	"github.com/google/uuid"
	"github.com/tablemate-app/tablemate-backend/pkg/db/models"
)

// CreateCustomerDTO carries the fields needed to persist a new customer profile.
type CreateCustomerDTO struct {
	Email    string
	Name     string
	Phone    *string
	Address  *string
	ImageURL *string
}

// ToModel maps the DTO onto the persistence model.
func (d CreateCustomerDTO) ToModel() *models.Customer {
	return &models.Customer{
		Email:    d.Email,
		Name:     d.Name,
		Phone:    d.Phone,
		Address:  d.Address,
		ImageURL: d.ImageURL,
	}
}

// CreateCustomerRequest attaches a customer profile to an existing account.
type CreateCustomerRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Name     string  `json:"name" validate:"required"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

// UpdateCustomerRequest carries partial customer updates.
type UpdateCustomerRequest struct {
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

// CustomerResponse is the outward shape of a customer profile.
type CustomerResponse struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Phone    *string   `json:"phone,omitempty"`
	Address  *string   `json:"address,omitempty"`
	ImageURL *string   `json:"image_url,omitempty"`
}

// FromModel maps a customer model to its outward response.
func FromModel(customer *models.Customer) CustomerResponse {
	return CustomerResponse{
		ID:       customer.ID,
		Email:    customer.Email,
		Name:     customer.Name,
		Phone:    customer.Phone,
		Address:  customer.Address,
		ImageURL: customer.ImageURL,
	}
}
