package owners

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

// Service defines the behavior needed by the owners controller.
type Service interface {
	Create(ctx context.Context, req CreateOwnerRequest) (*OwnerResponse, error)
	Get(ctx context.Context, id uuid.UUID, width, height int) (*OwnerResponse, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateOwnerRequest) (*OwnerResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type blobStore interface {
	Destroy(ctx context.Context, publicID string) error
}

// ServiceParams bundles the dependencies required to build the owners service.
type ServiceParams struct {
	DB       txRunner
	Owners   Repository
	Accounts accounts.Repository
	Blobs    blobStore
	Logger   *logger.Logger
}

type service struct {
	db       txRunner
	owners   Repository
	accounts accounts.Repository
	blobs    blobStore
	logg     *logger.Logger
}

// NewService constructs an owners service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	if params.Owners == nil {
		return nil, fmt.Errorf("owners repository is required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("accounts repository is required")
	}
	return &service{
		db:       params.DB,
		owners:   params.Owners,
		accounts: params.Accounts,
		blobs:    params.Blobs,
		logg:     params.Logger,
	}, nil
}

// Create attaches an owner profile to the account registered under the email.
// The profile row and the account link land in one transaction.
func (s *service) Create(ctx context.Context, req CreateOwnerRequest) (*OwnerResponse, error) {
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

	var response OwnerResponse
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		owner, err := s.owners.WithTx(tx).Create(ctx, CreateOwnerDTO{
			Email:    email,
			Name:     req.Name,
			Phone:    req.Phone,
			Address:  req.Address,
			ImageURL: req.ImageURL,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "owner profile already exists for this email")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create owner")
		}
		if err := s.accounts.WithTx(tx).LinkProfile(ctx, account.ID, owner.ID, enums.AccountRoleOwner); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "link profile")
		}
		response = FromModel(owner)
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create owner profile")
	}
	return &response, nil
}

// Get returns the owner profile. Positive width/height rewrite the image URL
// to a resized delivery variant.
func (s *service) Get(ctx context.Context, id uuid.UUID, width, height int) (*OwnerResponse, error) {
	owner, err := s.owners.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "owner not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup owner")
	}

	response := FromModel(owner)
	if response.ImageURL != nil && width > 0 && height > 0 {
		variant := cloudinary.TransformURL(*response.ImageURL, width, height)
		response.ImageURL = &variant
	}
	return &response, nil
}

// Update applies the provided partial changes.
func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateOwnerRequest) (*OwnerResponse, error) {
	owner, err := s.owners.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "owner not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup owner")
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		owner.Name = *req.Name
	}
	if req.Phone != nil {
		owner.Phone = req.Phone
	}
	if req.Address != nil {
		owner.Address = req.Address
	}
	if req.ImageURL != nil {
		owner.ImageURL = req.ImageURL
	}
	if req.Status != nil {
		owner.Status = *req.Status
	}

	if err := s.owners.Update(ctx, owner); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update owner")
	}
	response := FromModel(owner)
	return &response, nil
}

// Delete removes the owner profile and its account in one transaction. Blob
// cleanup is best effort after commit.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	owner, err := s.owners.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "owner not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup owner")
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.owners.WithTx(tx).Delete(ctx, owner.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete owner")
		}
		if err := s.accounts.WithTx(tx).DeleteByEmail(ctx, owner.Email); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete account")
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return typed
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete owner profile")
	}

	s.cleanupImage(ctx, owner.ImageURL)
	return nil
}

func (s *service) cleanupImage(ctx context.Context, imageURL *string) {
	if s.blobs == nil || imageURL == nil {
		return
	}
	publicID := cloudinary.PublicIDFromURL(*imageURL)
	if publicID == "" {
		return
	}
	if err := s.blobs.Destroy(ctx, publicID); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "owner image cleanup failed")
	}
}
