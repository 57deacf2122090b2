package accounts

import (
	"context"

	"github.com/google/uuid"
	"github.com/tablemate-app/tablemate-backend/pkg/db/models"
	"github.com/tablemate-app/tablemate-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes account persistence. WithTx rebinds the repository to a
// transaction handle.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, dto CreateAccountDTO) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	UpdatePasswordHash(ctx context.Context, email, passwordHash string) error
	LinkProfile(ctx context.Context, id uuid.UUID, profileID uuid.UUID, role enums.AccountRole) error
	DeleteByEmail(ctx context.Context, email string) error

	OwnerStatusByEmail(ctx context.Context, email string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs an accounts repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// Create inserts a new account and returns the persisted model.
func (r *repository) Create(ctx context.Context, dto CreateAccountDTO) (*models.Account, error) {
	account := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

// FindByEmail retrieves the account matching the provided email.
func (r *repository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByID loads an account by its UUID.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdatePasswordHash persists a new password hash for the email.
func (r *repository) UpdatePasswordHash(ctx context.Context, email, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("email = ?", email).
		UpdateColumn("password_hash", passwordHash).Error
}

// LinkProfile attaches a profile row to the account and fixes its role.
func (r *repository) LinkProfile(ctx context.Context, id uuid.UUID, profileID uuid.UUID, role enums.AccountRole) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"profile_id": profileID,
			"role":       role,
		}).Error
}

// DeleteByEmail removes the account for the email.
func (r *repository) DeleteByEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Where("email = ?", email).
		Delete(&models.Account{}).Error
}

// OwnerStatusByEmail reports whether the owner profile for the email has been
// activated. Returns gorm.ErrRecordNotFound when no owner profile exists.
func (r *repository) OwnerStatusByEmail(ctx context.Context, email string) (bool, error) {
	var owner models.Owner
	if err := r.db.WithContext(ctx).
		Select("status").
		Where("email = ?", email).
		First(&owner).Error; err != nil {
		return false, err
	}
	return owner.Status, nil
}
