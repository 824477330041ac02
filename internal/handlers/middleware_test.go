package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/unifyhq/unify/libs/auth"
)

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	protected := RequireAuth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a token")
	}))

	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/company", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rr.Code)
	}
}

func TestRequireAuthRejectsBadSignature(t *testing.T) {
	token, err := auth.Sign(auth.Claims{Sub: "acct-1", Exp: time.Now().Add(time.Hour).Unix()}, "other-secret")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	protected := RequireAuth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run with a forged token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/company", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rr.Code)
	}
}

func TestRequireAuthSetsAccountID(t *testing.T) {
	token, err := auth.Sign(auth.Claims{Sub: "acct-1", Exp: time.Now().Add(time.Hour).Unix()}, "secret")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	var got string
	protected := RequireAuth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = AccountIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/company", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rr.Code)
	}
	if got != "acct-1" {
		t.Fatalf("want account acct-1 in context, got %q", got)
	}
}
