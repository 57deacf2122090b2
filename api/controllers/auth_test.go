package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/tablemate-app/tablemate-backend/api/middleware"
	"github.com/tablemate-app/tablemate-backend/internal/accounts"
	"github.com/tablemate-app/tablemate-backend/pkg/config"
	"github.com/tablemate-app/tablemate-backend/pkg/enums"
	pkgerrors "github.com/tablemate-app/tablemate-backend/pkg/errors"
)

type stubAccountService struct {
	loginResp *accounts.LoginResponse
	summary   *accounts.AccountSummary
	err       error
}

func (s stubAccountService) BeginSignup(context.Context, accounts.SignupRequest) error { return s.err }

func (s stubAccountService) ResendSignupCode(context.Context, accounts.ResendSignupRequest) error {
	return s.err
}

func (s stubAccountService) ConfirmSignup(context.Context, accounts.ConfirmSignupRequest) (*accounts.AccountSummary, error) {
	return s.summary, s.err
}

func (s stubAccountService) Login(context.Context, accounts.LoginRequest) (*accounts.LoginResponse, error) {
	return s.loginResp, s.err
}

func (s stubAccountService) ResetPassword(context.Context, accounts.ResetPasswordRequest) error {
	return s.err
}

func (s stubAccountService) ForgotPassword(context.Context, accounts.ForgotPasswordRequest) error {
	return s.err
}

func (s stubAccountService) SetNewPassword(context.Context, accounts.SetNewPasswordRequest) error {
	return s.err
}

func postJSON(t *testing.T, handler http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestAuthSignupAccepted(t *testing.T) {
	handler := AuthSignup(stubAccountService{}, nil)
	resp := postJSON(t, handler, "/api/v1/auth/signup", `{"email":"pat@example.com","password":"longenough"}`)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d", resp.Code)
	}
}

func TestAuthSignupRejectsInvalidPayload(t *testing.T) {
	handler := AuthSignup(stubAccountService{}, nil)
	resp := postJSON(t, handler, "/api/v1/auth/signup", `{"email":"not-an-email","password":"longenough"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
}

func TestAuthSignupConfirmReturnsSummary(t *testing.T) {
	summary := &accounts.AccountSummary{ID: uuid.New(), Email: "pat@example.com", Role: enums.AccountRoleCustomer}
	handler := AuthSignupConfirm(stubAccountService{summary: summary}, nil)
	resp := postJSON(t, handler, "/api/v1/auth/signup/confirm", `{"email":"pat@example.com","otp":"abc123"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	var envelope struct {
		Data accounts.AccountSummary `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Email != summary.Email {
		t.Fatalf("expected account summary, got %+v", envelope.Data)
	}
}

func TestAuthLoginSetsSessionCookie(t *testing.T) {
	jwtCfg := config.JWTConfig{Secret: "secret", Issuer: "tablemate", ExpirationMinutes: 60}
	loginResp := &accounts.LoginResponse{
		Token: "signed-token",
		Account: accounts.AccountSummary{
			ID:    uuid.New(),
			Email: "pat@example.com",
			Role:  enums.AccountRoleOwner,
		},
	}
	handler := AuthLogin(stubAccountService{loginResp: loginResp}, jwtCfg, nil)
	resp := postJSON(t, handler, "/api/v1/auth/login", `{"email":"pat@example.com","password":"longenough"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var sessionCookie *http.Cookie
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			sessionCookie = cookie
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected session cookie")
	}
	if sessionCookie.Value != loginResp.Token {
		t.Fatalf("cookie must carry the token, got %q", sessionCookie.Value)
	}
	if !sessionCookie.HttpOnly {
		t.Fatal("session cookie must be http-only")
	}
}

func TestAuthLoginSurfacesUnauthorized(t *testing.T) {
	jwtCfg := config.JWTConfig{Secret: "secret", Issuer: "tablemate", ExpirationMinutes: 60}
	handler := AuthLogin(stubAccountService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}, jwtCfg, nil)
	resp := postJSON(t, handler, "/api/v1/auth/login", `{"email":"pat@example.com","password":"wrongpassword"}`)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if len(resp.Result().Cookies()) != 0 {
		t.Fatal("no cookie on failed login")
	}
}

func TestAuthPasswordForgotOpaqueAck(t *testing.T) {
	handler := AuthPasswordForgot(stubAccountService{}, nil)
	resp := postJSON(t, handler, "/api/v1/auth/password/forgot", `{"email":"whoever@example.com"}`)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d", resp.Code)
	}
}
