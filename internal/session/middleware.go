package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/signcore/service-auth-go/internal/account/entity"
	accountrepo "github.com/signcore/service-auth-go/internal/account/repo"
)

type ctxKey int

const claimsKey ctxKey = iota

// ClaimsFromContext returns the claims attached by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok
}

const bearerPrefix = "Bearer "

// RequireAuth gates a handler behind token verification. A missing or
// non-Bearer Authorization header is 401; a token that fails signature,
// expiry or revocation checks is 403. On success the decoded claims are
// attached to the request context.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, bearerPrefix) {
			writeError(w, http.StatusUnauthorized, "access denied: no token provided")
			return
		}
		claims, err := s.Authenticate(r.Context(), strings.TrimSpace(header[len(bearerPrefix):]))
		if err != nil {
			if errors.Is(err, ErrTokenExpired) || errors.Is(err, ErrTokenInvalid) {
				writeError(w, http.StatusForbidden, "invalid or expired token")
				return
			}
			writeError(w, http.StatusInternalServerError, "could not verify token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates a handler behind the admin role. It must run inside
// RequireAuth. The role is read from the store rather than the token so a
// demoted admin loses access as soon as the row changes.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "access denied: no token provided")
			return
		}
		a, err := s.accounts.GetByID(r.Context(), claims.AccountID)
		if err != nil {
			if errors.Is(err, accountrepo.ErrNotFound) {
				writeError(w, http.StatusForbidden, "admin access required")
				return
			}
			writeError(w, http.StatusInternalServerError, "could not verify role")
			return
		}
		if a.UserType != entity.UserTypeAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
