package auth

import (
	"testing"
	"time"
)

func TestSignAndVerify(t *testing.T) {
	claims := Claims{
		Sub:   "acct-1",
		Email: "owner@example.com",
		Iat:   time.Now().Unix(),
		Exp:   time.Now().Add(1 * time.Hour).Unix(),
	}
	secret := "test-secret"

	token, err := Sign(claims, secret)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	parsed, err := ParseAndVerify(token, secret)
	if err != nil {
		t.Fatalf("ParseAndVerify failed: %v", err)
	}
	if parsed.Sub != claims.Sub || parsed.Email != claims.Email {
		t.Fatalf("claims mismatch: got %+v", parsed)
	}
	if _, err := ParseAndVerify(token, "wrong-secret"); err == nil {
		t.Fatal("expected verification error with wrong secret")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	claims := Claims{
		Sub: "acct-1",
		Iat: time.Now().Add(-2 * time.Hour).Unix(),
		Exp: time.Now().Add(-1 * time.Hour).Unix(),
	}
	token, err := Sign(claims, "s")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if _, err := ParseAndVerify(token, "s"); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	for _, token := range []string{"", "a.b", "a.b.c.d", "not-a-token"} {
		if _, err := ParseAndVerify(token, "s"); err == nil {
			t.Fatalf("expected error for %q", token)
		}
	}
}
