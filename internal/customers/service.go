package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablemate-app/tablemate-backend/internal/accounts"
	"github.com/tablemate-app/tablemate-backend/pkg/db"
	"github.com/tablemate-app/tablemate-backend/pkg/enums"
	pkgerrors "github.com/tablemate-app/tablemate-backend/pkg/errors"
	"github.com/tablemate-app/tablemate-backend/pkg/logger"
	"github.com/tablemate-app/tablemate-backend/pkg/storage/cloudinary"
)

// Service defines the behavior needed by the customers controller.
type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*CustomerResponse, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type blobStore interface {
	Destroy(ctx context.Context, publicID string) error
}

// ServiceParams bundles the dependencies required to build the customers service.
type ServiceParams struct {
	DB        txRunner
	Customers Repository
	Accounts  accounts.Repository
	Blobs     blobStore
	Logger    *logger.Logger
}

type service struct {
	db        txRunner
	customers Repository
	accounts  accounts.Repository
	blobs     blobStore
	logg      *logger.Logger
}

// NewService constructs a customers service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customers repository is required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("accounts repository is required")
	}
	return &service{
		db:        params.DB,
		customers: params.Customers,
		accounts:  params.Accounts,
		blobs:     params.Blobs,
		logg:      params.Logger,
	}, nil
}

// Create attaches a customer profile to the account registered under the
// email. The profile row and the account link land in one transaction.
func (s *service) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no account for this email, sign up first")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup account")
	}
	if account.ProfileID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "account already has a profile")
	}

	var response CustomerResponse
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		customer, err := s.customers.WithTx(tx).Create(ctx, CreateCustomerDTO{
			Email:    email,
			Name:     req.Name,
			Phone:    req.Phone,
			Address:  req.Address,
			ImageURL: req.ImageURL,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "customer profile already exists for this email")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create customer")
		}
		if err := s.accounts.WithTx(tx).LinkProfile(ctx, account.ID, customer.ID, enums.AccountRoleCustomer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "link profile")
		}
		response = FromModel(customer)
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create customer profile")
	}
	return &response, nil
}

// Get returns the customer profile.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup customer")
	}
	response := FromModel(customer)
	return &response, nil
}

// Update applies the provided partial changes.
func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup customer")
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		customer.Name = *req.Name
	}
	if req.Phone != nil {
		customer.Phone = req.Phone
	}
	if req.Address != nil {
		customer.Address = req.Address
	}
	if req.ImageURL != nil {
		customer.ImageURL = req.ImageURL
	}

	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update customer")
	}
	response := FromModel(customer)
	return &response, nil
}

// Delete removes the customer profile and its account in one transaction.
// Blob cleanup is best effort after commit.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup customer")
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.customers.WithTx(tx).Delete(ctx, customer.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete customer")
		}
		if err := s.accounts.WithTx(tx).DeleteByEmail(ctx, customer.Email); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete account")
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return typed
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete customer profile")
	}

	if s.blobs != nil && customer.ImageURL != nil {
		if publicID := cloudinary.PublicIDFromURL(*customer.ImageURL); publicID != "" {
			if err := s.blobs.Destroy(ctx, publicID); err != nil && s.logg != nil {
				s.logg.Warn(ctx, "customer image cleanup failed")
			}
		}
	}
	return nil
}
