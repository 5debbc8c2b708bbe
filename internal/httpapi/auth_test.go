package httpapi

import (
	"errors"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/spsworld03/sps-bill-brew/internal/domain"
)

func TestAuthManagerHashesPlainPassword(t *testing.T) {
	auth, err := NewAuthManager("test-secret-key-with-32-characters", time.Hour, " SPS ", "counter-pass-1")
	if err != nil {
		t.Fatalf("new auth manager: %v", err)
	}
	if !isPasswordHash(auth.passwordHash) {
		t.Fatalf("expected bcrypt hash to be stored, got %q", auth.passwordHash)
	}

	resp, err := auth.Login(domain.LoginRequest{Username: "sps", Password: "counter-pass-1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Role != RoleOperator {
		t.Fatalf("expected operator role, got %s", resp.Role)
	}

	actor, err := auth.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if actor.Username != "sps" || actor.Role != RoleOperator {
		t.Fatalf("unexpected actor %+v", actor)
	}
}

func TestAuthManagerRejectsBadCredentials(t *testing.T) {
	auth, err := NewAuthManager("test-secret-key-with-32-characters", time.Hour, "sps", mustHashPassword(t, "counter-pass-1"))
	if err != nil {
		t.Fatalf("new auth manager: %v", err)
	}

	for _, req := range []domain.LoginRequest{
		{Username: "sps", Password: "wrong"},
		{Username: "someone", Password: "counter-pass-1"},
		{Username: "sps", Password: " "},
	} {
		if _, err := auth.Login(req); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected invalid credentials for %+v, got %v", req, err)
		}
	}
}

func TestAuthManagerRequiresOperator(t *testing.T) {
	if _, err := NewAuthManager("secret", time.Hour, "", "pw"); err == nil {
		t.Fatalf("expected error without username")
	}
	if _, err := NewAuthManager("secret", time.Hour, "sps", ""); err == nil {
		t.Fatalf("expected error without password")
	}
}

func TestParseTokenRejectsExpiredAndForeignTokens(t *testing.T) {
	auth, err := NewAuthManager("test-secret-key-with-32-characters", time.Minute, "sps", mustHashPassword(t, "counter-pass-1"))
	if err != nil {
		t.Fatalf("new auth manager: %v", err)
	}

	expired, err := auth.sign("sps", RoleOperator, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := auth.ParseToken(expired); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}

	other, _ := NewAuthManager("another-secret-key-with-32-chars!!", time.Minute, "sps", mustHashPassword(t, "counter-pass-1"))
	foreign, err := other.sign("sps", RoleOperator, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := auth.ParseToken(foreign); err == nil {
		t.Fatalf("expected token signed with another secret to be rejected")
	}

	unsigned := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, jwtlib.MapClaims{"sub": "sps", "role": RoleOperator})
	raw, err := unsigned.SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := auth.ParseToken(raw); err == nil {
		t.Fatalf("expected alg=none token to be rejected")
	}
}
