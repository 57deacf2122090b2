package otp

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tablemate-app/tablemate-backend/pkg/config"
	"github.com/tablemate-app/tablemate-backend/pkg/db/models"
	pkgerrors "github.com/tablemate-app/tablemate-backend/pkg/errors"
	"gorm.io/gorm"
)

var testClock = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	e := NewEngine(config.OTPConfig{
		SignupLength: 6,
		SignupTTL:    10 * time.Minute,
		ResetLength:  8,
		ResetTTL:     10 * time.Minute,
	})
	e.clock = func() time.Time { return testClock }
	return e
}

type stubPendingStore struct {
	pending   *models.PendingVerification
	findErr   error
	upsertErr error

	upsertedEmail string
	upsertedCode  string
	upsertedHash  string
	upsertedExp   time.Time
}

func (s *stubPendingStore) FindPendingByEmail(_ context.Context, _ string) (*models.PendingVerification, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.pending, nil
}

func (s *stubPendingStore) UpsertPending(_ context.Context, email, passwordHash, code string, expiresAt time.Time) (*models.PendingVerification, error) {
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	s.upsertedEmail = email
	s.upsertedHash = passwordHash
	s.upsertedCode = code
	s.upsertedExp = expiresAt
	return &models.PendingVerification{
		Email:        email,
		PasswordHash: passwordHash,
		OTP:          code,
		ExpiresAt:    expiresAt,
	}, nil
}

type stubResetStore struct {
	challenges []*models.PasswordResetChallenge
	findErr    error
	deleteErr  error

	createdEmail string
	createdCode  string
	createdExp   time.Time
	deletedID    uuid.UUID
}

func (s *stubResetStore) CreateResetChallenge(_ context.Context, email, code string, expiresAt time.Time) (*models.PasswordResetChallenge, error) {
	s.createdEmail = email
	s.createdCode = code
	s.createdExp = expiresAt
	challenge := &models.PasswordResetChallenge{
		ID:        uuid.New(),
		Email:     email,
		OTP:       code,
		ExpiresAt: expiresAt,
	}
	s.challenges = append(s.challenges, challenge)
	return challenge, nil
}

func (s *stubResetStore) FindResetByEmailAndCode(_ context.Context, email, code string) (*models.PasswordResetChallenge, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, challenge := range s.challenges {
		if challenge.Email == email && challenge.OTP == code {
			return challenge, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubResetStore) DeleteResetChallenge(_ context.Context, id uuid.UUID) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletedID = id
	remaining := s.challenges[:0]
	for _, challenge := range s.challenges {
		if challenge.ID != id {
			remaining = append(remaining, challenge)
		}
	}
	s.challenges = remaining
	return nil
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code())
	}
}

func TestGenerateSignupCodeUsesNarrowAlphabet(t *testing.T) {
	e := testEngine()
	for i := 0; i < 20; i++ {
		code, err := e.GenerateSignupCode()
		if err != nil {
			t.Fatalf("generate signup code: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 chars, got %q", code)
		}
		for _, r := range code {
			if !strings.ContainsRune("abcdefghijklmnopqrstuvwxyz0123456789", r) {
				t.Fatalf("unexpected rune %q in signup code %q", r, code)
			}
		}
	}
}

func TestGenerateResetCodeLength(t *testing.T) {
	e := testEngine()
	code, err := e.GenerateResetCode()
	if err != nil {
		t.Fatalf("generate reset code: %v", err)
	}
	if len([]rune(code)) != 8 {
		t.Fatalf("expected 8 chars, got %q", code)
	}
}

func TestIssueSignupRefreshesPendingRow(t *testing.T) {
	e := testEngine()
	store := &stubPendingStore{}

	pending, err := e.IssueSignup(context.Background(), store, "diner@example.com", "hash")
	if err != nil {
		t.Fatalf("issue signup: %v", err)
	}
	if store.upsertedEmail != "diner@example.com" {
		t.Fatalf("unexpected email %q", store.upsertedEmail)
	}
	if store.upsertedHash != "hash" {
		t.Fatalf("unexpected hash %q", store.upsertedHash)
	}
	wantExp := testClock.Add(10 * time.Minute)
	if !store.upsertedExp.Equal(wantExp) {
		t.Fatalf("expected expiry %v, got %v", wantExp, store.upsertedExp)
	}
	if pending.OTP != store.upsertedCode {
		t.Fatalf("returned row should carry the issued code")
	}
}

func TestValidateSignupNotFound(t *testing.T) {
	e := testEngine()
	store := &stubPendingStore{findErr: gorm.ErrRecordNotFound}

	_, err := e.ValidateSignup(context.Background(), store, "diner@example.com", "abc123")
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestValidateSignupExpired(t *testing.T) {
	e := testEngine()
	store := &stubPendingStore{pending: &models.PendingVerification{
		Email:     "diner@example.com",
		OTP:       "abc123",
		ExpiresAt: testClock.Add(-time.Minute),
	}}

	_, err := e.ValidateSignup(context.Background(), store, "diner@example.com", "abc123")
	expectCode(t, err, pkgerrors.CodeExpired)
}

func TestValidateSignupMismatch(t *testing.T) {
	e := testEngine()
	store := &stubPendingStore{pending: &models.PendingVerification{
		Email:     "diner@example.com",
		OTP:       "abc123",
		ExpiresAt: testClock.Add(time.Minute),
	}}

	_, err := e.ValidateSignup(context.Background(), store, "diner@example.com", "zzz999")
	expectCode(t, err, pkgerrors.CodeMismatch)
}

func TestValidateSignupSuccess(t *testing.T) {
	e := testEngine()
	store := &stubPendingStore{pending: &models.PendingVerification{
		Email:        "diner@example.com",
		PasswordHash: "hash",
		OTP:          "abc123",
		ExpiresAt:    testClock.Add(time.Minute),
	}}

	pending, err := e.ValidateSignup(context.Background(), store, "diner@example.com", "abc123")
	if err != nil {
		t.Fatalf("validate signup: %v", err)
	}
	if pending.PasswordHash != "hash" {
		t.Fatalf("expected pending row back, got %+v", pending)
	}
}

func TestIssueResetCreatesChallenge(t *testing.T) {
	e := testEngine()
	store := &stubResetStore{}

	challenge, err := e.IssueReset(context.Background(), store, "diner@example.com")
	if err != nil {
		t.Fatalf("issue reset: %v", err)
	}
	if store.createdEmail != "diner@example.com" {
		t.Fatalf("unexpected email %q", store.createdEmail)
	}
	wantExp := testClock.Add(10 * time.Minute)
	if !store.createdExp.Equal(wantExp) {
		t.Fatalf("expected expiry %v, got %v", wantExp, store.createdExp)
	}
	if challenge.OTP != store.createdCode {
		t.Fatalf("returned challenge should carry the issued code")
	}
}

func TestConsumeResetDeletesChallenge(t *testing.T) {
	e := testEngine()
	id := uuid.New()
	store := &stubResetStore{challenges: []*models.PasswordResetChallenge{{
		ID:        id,
		Email:     "diner@example.com",
		OTP:       "Zx9!Qw2#",
		ExpiresAt: testClock.Add(time.Minute),
	}}}

	if _, err := e.ConsumeReset(context.Background(), store, "diner@example.com", "Zx9!Qw2#"); err != nil {
		t.Fatalf("consume reset: %v", err)
	}
	if store.deletedID != id {
		t.Fatalf("expected challenge %s deleted, got %s", id, store.deletedID)
	}
}

func TestConsumeResetWrongCodeKeepsChallenges(t *testing.T) {
	e := testEngine()
	store := &stubResetStore{challenges: []*models.PasswordResetChallenge{{
		ID:        uuid.New(),
		Email:     "diner@example.com",
		OTP:       "Zx9!Qw2#",
		ExpiresAt: testClock.Add(time.Minute),
	}}}

	_, err := e.ConsumeReset(context.Background(), store, "diner@example.com", "wrong")
	expectCode(t, err, pkgerrors.CodeNotFound)
	if store.deletedID != uuid.Nil {
		t.Fatalf("an unmatched code must not consume any challenge")
	}
}

func TestConsumeResetEarlierChallengeStaysRedeemable(t *testing.T) {
	e := testEngine()
	store := &stubResetStore{}

	first, err := e.IssueReset(context.Background(), store, "diner@example.com")
	if err != nil {
		t.Fatalf("issue first reset: %v", err)
	}
	second, err := e.IssueReset(context.Background(), store, "diner@example.com")
	if err != nil {
		t.Fatalf("issue second reset: %v", err)
	}

	consumed, err := e.ConsumeReset(context.Background(), store, "diner@example.com", first.OTP)
	if err != nil {
		t.Fatalf("consume first-issued code: %v", err)
	}
	if consumed.ID != first.ID {
		t.Fatalf("expected the first challenge consumed, got %s", consumed.ID)
	}
	if store.deletedID != first.ID {
		t.Fatalf("only the matched challenge may be deleted")
	}

	if _, err := e.ConsumeReset(context.Background(), store, "diner@example.com", second.OTP); err != nil {
		t.Fatalf("second code must remain valid: %v", err)
	}
}

func TestConsumeResetExpired(t *testing.T) {
	e := testEngine()
	store := &stubResetStore{challenges: []*models.PasswordResetChallenge{{
		ID:        uuid.New(),
		Email:     "diner@example.com",
		OTP:       "Zx9!Qw2#",
		ExpiresAt: testClock.Add(-time.Minute),
	}}}

	_, err := e.ConsumeReset(context.Background(), store, "diner@example.com", "Zx9!Qw2#")
	expectCode(t, err, pkgerrors.CodeExpired)
}

func TestConsumeResetNotFound(t *testing.T) {
	e := testEngine()
	store := &stubResetStore{findErr: gorm.ErrRecordNotFound}

	_, err := e.ConsumeReset(context.Background(), store, "diner@example.com", "code")
	expectCode(t, err, pkgerrors.CodeNotFound)
}
