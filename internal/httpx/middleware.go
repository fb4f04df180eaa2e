package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ariefcatur/go-affiliate-shop.git/internal/auth"
)

type ctxKey int

const claimsKey ctxKey = iota

// ClaimsFrom returns the verified identity context, or nil outside an
// authenticated route.
func ClaimsFrom(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey).(*auth.Claims)
	return c
}

// RequireAuth verifies the bearer token and stores the claims on the request
// context. Handlers downstream never see an unauthenticated request.
func RequireAuth(maker *auth.TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeMessage(w, http.StatusUnauthorized, "Access denied. No token provided.")
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")
			claims, err := maker.Verify(token)
			if err != nil {
				if errors.Is(err, auth.ErrExpiredToken) {
					writeMessage(w, http.StatusUnauthorized, "Token expired.")
					return
				}
				writeMessage(w, http.StatusForbidden, "Invalid token.")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

// RequireAdmin gates a route on the admin capability carried in the claims.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFrom(r.Context())
		if claims == nil {
			writeMessage(w, http.StatusUnauthorized, "Access denied. No user context.")
			return
		}
		if !claims.IsAdmin {
			writeMessage(w, http.StatusForbidden, "Forbidden. Admin access required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
