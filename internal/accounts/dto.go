package accounts

import (
	"github.com/google/uuid"
	"github.com/tablemate-app/tablemate-backend/pkg/db/models"
	"github.com/tablemate-app/tablemate-backend/pkg/enums"
)

// CreateAccountDTO carries the fields needed to persist a new account.
type CreateAccountDTO struct {
	Email        string
	PasswordHash string
	Role         enums.AccountRole
}

// ToModel maps the DTO onto the persistence model.
func (d CreateAccountDTO) ToModel() *models.Account {
	return &models.Account{
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
	}
}

// SignupRequest starts the email verification flow.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// ResendSignupRequest refreshes the pending verification code.
type ResendSignupRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ConfirmSignupRequest exchanges a verification code for an account.
type ConfirmSignupRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

// LoginRequest contains the login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ResetPasswordRequest rotates the password for an authenticated account.
type ResetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ForgotPasswordRequest kicks off the reset-code flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SetNewPasswordRequest completes the reset-code flow.
type SetNewPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	OTP             string `json:"otp" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// AccountSummary is the outward shape of an account. The password hash never
// leaves the package.
type AccountSummary struct {
	ID    uuid.UUID         `json:"id"`
	Email string            `json:"email"`
	Role  enums.AccountRole `json:"role"`
}

// LoginResponse carries the minted token and the account summary.
type LoginResponse struct {
	Token   string         `json:"token"`
	Account AccountSummary `json:"account"`
}

// FromModel maps an account model to its outward summary.
func FromModel(account *models.Account) AccountSummary {
	return AccountSummary{
		ID:    account.ID,
		Email: account.Email,
		Role:  account.Role,
	}
}
