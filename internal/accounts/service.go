package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tablemate-app/tablemate-backend/internal/otp"
	pkgauth "github.com/tablemate-app/tablemate-backend/pkg/auth"
	"github.com/tablemate-app/tablemate-backend/pkg/config"
	"github.com/tablemate-app/tablemate-backend/pkg/db"
	"github.com/tablemate-app/tablemate-backend/pkg/db/models"
	"github.com/tablemate-app/tablemate-backend/pkg/enums"
	pkgerrors "github.com/tablemate-app/tablemate-backend/pkg/errors"
	"github.com/tablemate-app/tablemate-backend/pkg/logger"
	"github.com/tablemate-app/tablemate-backend/pkg/mailer"
	"github.com/tablemate-app/tablemate-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controllers.
type Service interface {
	BeginSignup(ctx context.Context, req SignupRequest) error
	ResendSignupCode(ctx context.Context, req ResendSignupRequest) error
	ConfirmSignup(ctx context.Context, req ConfirmSignupRequest) (*AccountSummary, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	SetNewPassword(ctx context.Context, req SetNewPasswordRequest) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the dependencies required to build the account service.
type ServiceParams struct {
	DB             txRunner
	Accounts       Repository
	Challenges     otp.Repository
	Engine         *otp.Engine
	Notifier       mailer.Notifier
	Logger         *logger.Logger
	PasswordConfig config.PasswordConfig
	JWTConfig      config.JWTConfig
	OTPConfig      config.OTPConfig
}

type service struct {
	db          txRunner
	accounts    Repository
	challenges  otp.Repository
	engine      *otp.Engine
	notifier    mailer.Notifier
	logg        *logger.Logger
	passwordCfg config.PasswordConfig
	jwtCfg      config.JWTConfig
	otpCfg      config.OTPConfig
}

// NewService constructs an account service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("accounts repository is required")
	}
	if params.Challenges == nil {
		return nil, fmt.Errorf("challenges repository is required")
	}
	if params.Engine == nil {
		return nil, fmt.Errorf("otp engine is required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	return &service{
		db:          params.DB,
		accounts:    params.Accounts,
		challenges:  params.Challenges,
		engine:      params.Engine,
		notifier:    params.Notifier,
		logg:        params.Logger,
		passwordCfg: params.PasswordConfig,
		jwtCfg:      params.JWTConfig,
		otpCfg:      params.OTPConfig,
	}, nil
}

// BeginSignup starts the email verification flow. Retrying with an email that
// already has a pending signup refreshes the code instead of failing.
func (s *service) BeginSignup(ctx context.Context, req SignupRequest) error {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return err
	}

	// A retry for an email that is already mid-signup keeps the originally
	// submitted hash, so the resubmitted password is not policed here.
	if pending, err := s.challenges.FindPendingByEmail(ctx, email); err == nil {
		return s.refreshSignupCode(ctx, email, pending.PasswordHash)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check pending signup")
	}

	if len(req.Password) < 8 {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check account email")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	return s.refreshSignupCode(ctx, email, passwordHash)
}

// refreshSignupCode issues (or re-issues) the pending code in a transaction
// and notifies strictly after commit.
func (s *service) refreshSignupCode(ctx context.Context, email, passwordHash string) error {
	var code string
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		pending, err := s.engine.IssueSignup(ctx, s.challenges.WithTx(tx), email, passwordHash)
		if err != nil {
			return err
		}
		code = pending.OTP
		return nil
	})
	if err != nil {
		return txError(err)
	}

	if err := s.notifier.SendSignupCode(ctx, email, code, s.otpCfg.SignupTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send signup code")
	}
	return nil
}

// ResendSignupCode refreshes the code for an existing pending signup.
func (s *service) ResendSignupCode(ctx context.Context, req ResendSignupRequest) error {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return err
	}

	pending, err := s.challenges.FindPendingByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no pending signup for this email")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup pending signup")
	}

	return s.refreshSignupCode(ctx, email, pending.PasswordHash)
}

// ConfirmSignup exchanges a valid code for an account. The pending row is
// deleted in the same transaction that creates the account, so a code can
// never be redeemed twice.
func (s *service) ConfirmSignup(ctx context.Context, req ConfirmSignupRequest) (*AccountSummary, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if req.OTP == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "otp is required")
	}

	var account *models.Account
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		challengeRepo := s.challenges.WithTx(tx)
		accountRepo := s.accounts.WithTx(tx)

		pending, err := s.engine.ValidateSignup(ctx, challengeRepo, email, req.OTP)
		if err != nil {
			return err
		}

		if _, err := accountRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "account already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check account email")
		}

		created, err := accountRepo.Create(ctx, CreateAccountDTO{
			Email:        email,
			PasswordHash: pending.PasswordHash,
			Role:         enums.AccountRoleCustomer,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "account already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create account")
		}
		account = created

		if err := challengeRepo.DeletePendingByEmail(ctx, email); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete pending signup")
		}
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}

	summary := FromModel(account)
	return &summary, nil
}

// Login authenticates the credentials and mints an access token. Every
// authentication failure surfaces as the same UNAUTHORIZED response so the
// endpoint cannot be used to probe which emails exist.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup account")
	}

	valid, err := security.VerifyPassword(req.Password, account.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	// Owner accounts stay locked until the profile is activated. The password
	// already matched, so the message can be specific without leaking anything.
	if account.Role == enums.AccountRoleOwner {
		active, err := s.accounts.OwnerStatusByEmail(ctx, email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check owner status")
		}
		if err != nil || !active {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "please verify your email first")
		}
	}

	token, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		AccountID: account.ID,
		Role:      account.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &LoginResponse{
		Token:   token,
		Account: FromModel(account),
	}, nil
}

// ResetPassword rotates the password after checking the current one.
func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return err
	}
	if len(req.NewPassword) < 8 {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup account")
	}

	valid, err := security.VerifyPassword(req.CurrentPassword, account.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	passwordHash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.accounts.UpdatePasswordHash(ctx, email, passwordHash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}
	return nil
}

// ForgotPassword issues a reset challenge when the account exists. The
// response is the same either way so the endpoint cannot be used to probe
// which emails are registered.
func (s *service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return err
	}

	if _, err := s.accounts.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup account")
	}

	challenge, err := s.engine.IssueReset(ctx, s.challenges, email)
	if err != nil {
		return err
	}

	if err := s.notifier.SendResetCode(ctx, email, challenge.OTP, s.otpCfg.ResetTTL); err != nil {
		// Keep the ack opaque: a delivery failure must not tell the caller
		// whether the account exists.
		if s.logg != nil {
			s.logg.Error(ctx, "send reset code", err)
		}
	}
	return nil
}

// SetNewPassword completes the reset flow, consuming the challenge and
// persisting the new hash in one transaction.
func (s *service) SetNewPassword(ctx context.Context, req SetNewPasswordRequest) error {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return err
	}
	if len(req.NewPassword) < 8 {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if req.NewPassword != req.ConfirmPassword {
		return pkgerrors.New(pkgerrors.CodeValidation, "passwords do not match")
	}

	if _, err := s.accounts.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup account")
	}

	passwordHash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.engine.ConsumeReset(ctx, s.challenges.WithTx(tx), email, req.OTP); err != nil {
			return err
		}
		if err := s.accounts.WithTx(tx).UpdatePasswordHash(ctx, email, passwordHash); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
		}
		return nil
	})
	return txError(err)
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" || !strings.Contains(normalized, "@") {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	return normalized, nil
}

// txError keeps typed errors intact and maps context deadline hits from the
// transaction budget to TIMEOUT.
func txError(err error) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "transaction timed out")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "transaction failed")
}
