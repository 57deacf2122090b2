package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tablemate-app/tablemate-backend/pkg/config"
	"github.com/tablemate-app/tablemate-backend/pkg/db/models"
	pkgerrors "github.com/tablemate-app/tablemate-backend/pkg/errors"
	"github.com/tablemate-app/tablemate-backend/pkg/security"
	"gorm.io/gorm"
)

// Signup codes stay typeable on a phone keyboard. Reset codes guard an
// already-verified account, so they draw from a wider alphabet.
var (
	signupCharset = []rune("abcdefghijklmnopqrstuvwxyz0123456789")
	resetCharset  = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%&*")
)

// PendingStore is the slice of the repository the engine needs for signups.
type PendingStore interface {
	FindPendingByEmail(ctx context.Context, email string) (*models.PendingVerification, error)
	UpsertPending(ctx context.Context, email, passwordHash, code string, expiresAt time.Time) (*models.PendingVerification, error)
}

// ResetStore is the slice of the repository the engine needs for resets.
type ResetStore interface {
	CreateResetChallenge(ctx context.Context, email, code string, expiresAt time.Time) (*models.PasswordResetChallenge, error)
	FindResetByEmailAndCode(ctx context.Context, email, code string) (*models.PasswordResetChallenge, error)
	DeleteResetChallenge(ctx context.Context, id uuid.UUID) error
}

// Engine issues and checks one-time codes for the two verification flows.
type Engine struct {
	cfg   config.OTPConfig
	clock func() time.Time
}

// NewEngine builds an engine with the configured code lengths and TTLs.
func NewEngine(cfg config.OTPConfig) *Engine {
	return &Engine{cfg: cfg, clock: time.Now}
}

// GenerateSignupCode draws a signup code from the narrow alphabet.
func (e *Engine) GenerateSignupCode() (string, error) {
	return security.RandomString(e.cfg.SignupLength, signupCharset)
}

// GenerateResetCode draws a reset code from the wide alphabet.
func (e *Engine) GenerateResetCode() (string, error) {
	return security.RandomString(e.cfg.ResetLength, resetCharset)
}

// IssueSignup creates or refreshes the pending signup row for the email and
// returns it with the new code and expiry.
func (e *Engine) IssueSignup(ctx context.Context, store PendingStore, email, passwordHash string) (*models.PendingVerification, error) {
	code, err := e.GenerateSignupCode()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate signup code")
	}
	expiresAt := e.clock().UTC().Add(e.cfg.SignupTTL)

	pending, err := store.UpsertPending(ctx, email, passwordHash, code, expiresAt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save pending signup")
	}
	return pending, nil
}

// ValidateSignup checks the submitted code against the pending signup. The
// caller deletes the row once the account exists.
func (e *Engine) ValidateSignup(ctx context.Context, store PendingStore, email, code string) (*models.PendingVerification, error) {
	pending, err := store.FindPendingByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no pending signup for this email")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup pending signup")
	}

	if e.clock().UTC().After(pending.ExpiresAt) {
		return nil, pkgerrors.New(pkgerrors.CodeExpired, "verification code expired")
	}
	if subtle.ConstantTimeCompare([]byte(pending.OTP), []byte(code)) != 1 {
		return nil, pkgerrors.New(pkgerrors.CodeMismatch, "verification code does not match")
	}
	return pending, nil
}

// IssueReset appends a fresh password-reset challenge for the email.
func (e *Engine) IssueReset(ctx context.Context, store ResetStore, email string) (*models.PasswordResetChallenge, error) {
	code, err := e.GenerateResetCode()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reset code")
	}
	expiresAt := e.clock().UTC().Add(e.cfg.ResetTTL)

	challenge, err := store.CreateResetChallenge(ctx, email, code, expiresAt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save reset challenge")
	}
	return challenge, nil
}

// ConsumeReset validates the submitted code against the outstanding
// challenges for the email and deletes the matched one so the code is single
// use. Matching on email+code keeps every issued code redeemable until it
// expires, even after newer codes are requested.
func (e *Engine) ConsumeReset(ctx context.Context, store ResetStore, email, code string) (*models.PasswordResetChallenge, error) {
	challenge, err := store.FindResetByEmailAndCode(ctx, email, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no matching reset challenge for this email")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup reset challenge")
	}

	if e.clock().UTC().After(challenge.ExpiresAt) {
		return nil, pkgerrors.New(pkgerrors.CodeExpired, "reset code expired")
	}

	if err := store.DeleteResetChallenge(ctx, challenge.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "consume reset challenge")
	}
	return challenge, nil
}
