package owners

import (
	"context"

	"github.com/google/uuid"
	"github.com/tablemate-app/tablemate-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes owner-profile persistence. WithTx rebinds the repository
// to a transaction handle.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, dto CreateOwnerDTO) (*models.Owner, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Owner, error)
	FindByEmail(ctx context.Context, email string) (*models.Owner, error)
	Update(ctx context.Context, owner *models.Owner) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs an owners repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// Create inserts a new owner profile and returns the persisted model.
func (r *repository) Create(ctx context.Context, dto CreateOwnerDTO) (*models.Owner, error) {
	owner := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(owner).Error; err != nil {
		return nil, err
	}
	return owner, nil
}

// FindByID loads an owner by their UUID.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Owner, error) {
	var owner models.Owner
	if err := r.db.WithContext(ctx).First(&owner, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &owner, nil
}

// FindByEmail retrieves the owner matching the provided email.
func (r *repository) FindByEmail(ctx context.Context, email string) (*models.Owner, error) {
	var owner models.Owner
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&owner).Error; err != nil {
		return nil, err
	}
	return &owner, nil
}

// Update persists the full owner row.
func (r *repository) Update(ctx context.Context, owner *models.Owner) error {
	return r.db.WithContext(ctx).Save(owner).Error
}

// Delete removes the owner row.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Owner{}).Error
}
