package otp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tablemate-app/tablemate-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes persistence for verification codes. WithTx rebinds the
// repository to a transaction handle.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindPendingByEmail(ctx context.Context, email string) (*models.PendingVerification, error)
	UpsertPending(ctx context.Context, email, passwordHash, code string, expiresAt time.Time) (*models.PendingVerification, error)
	DeletePendingByEmail(ctx context.Context, email string) error

	CreateResetChallenge(ctx context.Context, email, code string, expiresAt time.Time) (*models.PasswordResetChallenge, error)
	FindResetByEmailAndCode(ctx context.Context, email, code string) (*models.PasswordResetChallenge, error)
	DeleteResetChallenge(ctx context.Context, id uuid.UUID) error
	DeleteResetChallengesByEmail(ctx context.Context, email string) error

	DeleteExpiredPending(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteExpiredResetChallenges(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs an otp repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// FindPendingByEmail retrieves the pending signup for the provided email.
func (r *repository) FindPendingByEmail(ctx context.Context, email string) (*models.PendingVerification, error) {
	var pending models.PendingVerification
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&pending).Error; err != nil {
		return nil, err
	}
	return &pending, nil
}

// UpsertPending creates a pending signup, or refreshes the code, expiry and
// password hash in place when the email already has one.
func (r *repository) UpsertPending(ctx context.Context, email, passwordHash, code string, expiresAt time.Time) (*models.PendingVerification, error) {
	var pending models.PendingVerification
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&pending).Error
	switch {
	case err == nil:
		pending.PasswordHash = passwordHash
		pending.OTP = code
		pending.ExpiresAt = expiresAt
		if err := r.db.WithContext(ctx).Save(&pending).Error; err != nil {
			return nil, err
		}
		return &pending, nil
	case err == gorm.ErrRecordNotFound:
		pending = models.PendingVerification{
			Email:        email,
			PasswordHash: passwordHash,
			OTP:          code,
			ExpiresAt:    expiresAt,
		}
		if err := r.db.WithContext(ctx).Create(&pending).Error; err != nil {
			return nil, err
		}
		return &pending, nil
	default:
		return nil, err
	}
}

// DeletePendingByEmail removes the pending signup for the email.
func (r *repository) DeletePendingByEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Where("email = ?", email).
		Delete(&models.PendingVerification{}).Error
}

// CreateResetChallenge inserts a fresh password-reset challenge.
func (r *repository) CreateResetChallenge(ctx context.Context, email, code string, expiresAt time.Time) (*models.PasswordResetChallenge, error) {
	challenge := models.PasswordResetChallenge{
		Email:     email,
		OTP:       code,
		ExpiresAt: expiresAt,
	}
	if err := r.db.WithContext(ctx).Create(&challenge).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

// FindResetByEmailAndCode returns the outstanding challenge matching both the
// email and the submitted code. Every outstanding challenge for the email is a
// candidate, so a code stays redeemable after newer ones are issued.
func (r *repository) FindResetByEmailAndCode(ctx context.Context, email, code string) (*models.PasswordResetChallenge, error) {
	var challenge models.PasswordResetChallenge
	if err := r.db.WithContext(ctx).
		Where("email = ? AND otp = ?", email, code).
		Order("created_at DESC").
		First(&challenge).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

// DeleteResetChallenge removes a consumed challenge by id.
func (r *repository) DeleteResetChallenge(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.PasswordResetChallenge{}).Error
}

// DeleteResetChallengesByEmail removes every outstanding challenge for the email.
func (r *repository) DeleteResetChallengesByEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Where("email = ?", email).
		Delete(&models.PasswordResetChallenge{}).Error
}

// DeleteExpiredPending purges pending signups whose code expired before cutoff.
func (r *repository) DeleteExpiredPending(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&models.PendingVerification{})
	return result.RowsAffected, result.Error
}

// DeleteExpiredResetChallenges purges challenges whose code expired before cutoff.
func (r *repository) DeleteExpiredResetChallenges(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&models.PasswordResetChallenge{})
	return result.RowsAffected, result.Error
}
