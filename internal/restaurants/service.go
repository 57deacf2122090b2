package restaurants

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tablemate-app/tablemate-backend/internal/owners"
	pkgerrors "github.com/tablemate-app/tablemate-backend/pkg/errors"
	"github.com/tablemate-app/tablemate-backend/pkg/logger"
	"github.com/tablemate-app/tablemate-backend/pkg/storage/cloudinary"
)

// Service defines the behavior needed by the restaurants controller.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, req CreateRestaurantRequest) (*RestaurantResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*RestaurantResponse, error)
	List(ctx context.Context) ([]RestaurantResponse, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRestaurantRequest) (*RestaurantResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type blobStore interface {
	Destroy(ctx context.Context, publicID string) error
}

// ServiceParams bundles the dependencies required to build the restaurants service.
type ServiceParams struct {
	Restaurants Repository
	Owners      owners.Repository
	Blobs       blobStore
	Logger      *logger.Logger
}

type service struct {
	restaurants Repository
	owners      owners.Repository
	blobs       blobStore
	logg        *logger.Logger
}

// NewService constructs a restaurants service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Restaurants == nil {
		return nil, fmt.Errorf("restaurants repository is required")
	}
	if params.Owners == nil {
		return nil, fmt.Errorf("owners repository is required")
	}
	return &service{
		restaurants: params.Restaurants,
		owners:      params.Owners,
		blobs:       params.Blobs,
		logg:        params.Logger,
	}, nil
}

// Create registers a restaurant under the owner profile.
func (s *service) Create(ctx context.Context, ownerID uuid.UUID, req CreateRestaurantRequest) (*RestaurantResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	minOrder := decimal.Zero
	if req.MinOrderAmount != nil {
		if req.MinOrderAmount.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_order_amount cannot be negative")
		}
		minOrder = *req.MinOrderAmount
	}

	if _, err := s.owners.FindByID(ctx, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "owner profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup owner")
	}

	restaurant, err := s.restaurants.Create(ctx, CreateRestaurantDTO{
		OwnerID:        ownerID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		ImageURL:       req.ImageURL,
		MinOrderAmount: minOrder,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create restaurant")
	}
	response := FromModel(restaurant)
	return &response, nil
}

// Get returns a single restaurant.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*RestaurantResponse, error) {
	restaurant, err := s.restaurants.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup restaurant")
	}
	response := FromModel(restaurant)
	return &response, nil
}

// List returns every restaurant, newest first.
func (s *service) List(ctx context.Context) ([]RestaurantResponse, error) {
	rows, err := s.restaurants.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list restaurants")
	}
	responses := make([]RestaurantResponse, 0, len(rows))
	for i := range rows {
		responses = append(responses, FromModel(&rows[i]))
	}
	return responses, nil
}

// Update applies the provided partial changes.
func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateRestaurantRequest) (*RestaurantResponse, error) {
	restaurant, err := s.restaurants.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup restaurant")
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		restaurant.Name = *req.Name
	}
	if req.Email != nil {
		restaurant.Email = req.Email
	}
	if req.Phone != nil {
		restaurant.Phone = req.Phone
	}
	if req.Address != nil {
		restaurant.Address = req.Address
	}
	if req.ImageURL != nil {
		restaurant.ImageURL = req.ImageURL
	}
	if req.MinOrderAmount != nil {
		if req.MinOrderAmount.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_order_amount cannot be negative")
		}
		restaurant.MinOrderAmount = *req.MinOrderAmount
	}

	if err := s.restaurants.Update(ctx, restaurant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update restaurant")
	}
	response := FromModel(restaurant)
	return &response, nil
}

// Delete removes the restaurant. Blob cleanup is best effort.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	restaurant, err := s.restaurants.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup restaurant")
	}

	if err := s.restaurants.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete restaurant")
	}

	if s.blobs != nil && restaurant.ImageURL != nil {
		if publicID := cloudinary.PublicIDFromURL(*restaurant.ImageURL); publicID != "" {
			if err := s.blobs.Destroy(ctx, publicID); err != nil && s.logg != nil {
				s.logg.Warn(ctx, "restaurant image cleanup failed")
			}
		}
	}
	return nil
}
