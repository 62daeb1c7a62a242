package httpapi

import (
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"shopos/backend/internal/domain"
	"shopos/backend/internal/session"
)

func TestAuthManagerOpensAdminSession(t *testing.T) {
	manager := NewAuthManager("test-secret-key-with-enough-length", time.Hour, "482915")

	resp, err := manager.Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if resp.Role != domain.RoleAdmin || resp.View != "pos" {
		t.Fatalf("expected admin on pos, got %s on %s", resp.Role, resp.View)
	}
	for _, v := range resp.Views {
		if v == "reports" {
			t.Fatalf("admin session must not list reports view: %v", resp.Views)
		}
	}

	s, err := manager.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.HasPrefix(s.ID, "sess-") {
		t.Fatalf("expected session id prefix, got %q", s.ID)
	}
	if s.Actor().Role != domain.RoleAdmin {
		t.Fatalf("expected admin actor, got %s", s.Actor().Role)
	}
}

func TestAuthManagerIssueKeepsSessionID(t *testing.T) {
	manager := NewAuthManager("test-secret-key-with-enough-length", time.Hour, "482915")
	elevated := Session{ID: "sess-1", State: session.State{Role: domain.RoleSuperAdmin, View: session.ViewReports}}

	resp, err := manager.Issue(elevated)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	got, err := manager.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != elevated {
		t.Fatalf("expected %+v, got %+v", elevated, got)
	}
}

func TestAuthManagerValidatePIN(t *testing.T) {
	manager := NewAuthManager("test-secret-key-with-enough-length", time.Hour, " 482915 ")

	if !manager.ValidatePIN("482915") {
		t.Fatalf("expected configured pin to validate")
	}
	if manager.ValidatePIN("000000") {
		t.Fatalf("expected wrong pin to fail")
	}
	if manager.ValidatePIN("") {
		t.Fatalf("expected empty pin to fail")
	}

	unset := NewAuthManager("test-secret-key-with-enough-length", time.Hour, "")
	if unset.ValidatePIN("482915") {
		t.Fatalf("expected elevation to be impossible without a configured pin")
	}
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	manager := NewAuthManager("test-secret-key-with-enough-length", time.Hour, "482915")
	other := NewAuthManager("another-secret-key-with-enough-len", time.Hour, "482915")

	resp, err := other.Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := manager.ParseToken(resp.AccessToken); err == nil {
		t.Fatalf("expected token signed with another secret to be rejected")
	}
}

func TestParseTokenRejectsUnknownRole(t *testing.T) {
	secret := "test-secret-key-with-enough-length"
	manager := NewAuthManager(secret, time.Hour, "482915")

	claims := sessionClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "sess-1",
			Issuer:    "shopos",
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "owner",
		View: session.ViewPOS,
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := manager.ParseToken(token); err == nil {
		t.Fatalf("expected unknown role to be rejected")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	secret := "test-secret-key-with-enough-length"
	manager := NewAuthManager(secret, time.Hour, "482915")

	claims := sessionClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "sess-1",
			Issuer:    "shopos",
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		Role: domain.RoleAdmin,
		View: session.ViewPOS,
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := manager.ParseToken(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}
