package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/unifyhq/unify/libs/auth"
)

type ctxKey int

const accountIDKey ctxKey = iota

// AccountIDFromContext returns the authenticated account ID set by RequireAuth.
func AccountIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(accountIDKey).(string)
	return id
}

// RequireAuth verifies the bearer token and stores the account ID in the
// request context. Every tenant-scoped handler reads it from there; nothing
// else carries caller identity.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := auth.ParseAndVerify(token, secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), accountIDKey, claims.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
