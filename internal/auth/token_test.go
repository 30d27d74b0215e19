package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, expiresAt, err := tm.GenerateToken("alice")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expiresAt %v is not in the future", expiresAt)
	}
	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "alice" || claims.Scope != OpsScope {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestTokenRejectsOtherSecretAndExpiry(t *testing.T) {
	issuer := NewTokenManager("secret", 5)
	token, _, err := issuer.GenerateToken("alice")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := NewTokenManager("other", 5).ParseToken(token); err == nil {
		t.Error("token signed with another secret must be rejected")
	}

	expired := NewTokenManager("secret", 1)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.GenerateToken("bob")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := expired.ParseToken(old); err == nil {
		t.Error("expired token must be rejected")
	}
}

func TestTokenManagerDisabled(t *testing.T) {
	tm := NewTokenManager("", 5)
	if tm.Enabled() {
		t.Fatal("empty secret should disable the manager")
	}
	if _, _, err := tm.GenerateToken("alice"); err == nil {
		t.Fatal("GenerateToken without secret should fail")
	}
}
