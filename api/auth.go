/*
auth.go - JWT authentication and role middleware

PURPOSE:
  Issues and validates bearer tokens for the API. Login exchanges
  email/password for an HS256-signed JWT; the middleware resolves the
  token subject back to a live directory record on every request, so
  deactivated users lose access immediately regardless of token expiry.

TOKEN SHAPE:
  Registered claims only: sub = user ID, exp = issue time + TTL.
  Role is NOT embedded in the token - it is read from the directory on
  each request, so role changes take effect without re-login.

MIDDLEWARE:
  RequireAuth:     401 unless a valid bearer token maps to an active user
  RequireElevated: 403 unless the resolved user is approver or admin

SEE ALSO:
  - handlers.go: Login handler lives with the other handlers
  - wfh/types.go: Role definitions
*/
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/MichelangeloMastroroccoDeGrandis/leaveboard-server/wfh"
)

// tokenTTL bounds how long a login stays valid.
const tokenTTL = 24 * time.Hour

type contextKey string

const userContextKey contextKey = "auth.user"

// Auth signs and verifies bearer tokens and resolves them to users.
type Auth struct {
	Secret []byte
	Users  wfh.UserDirectory
}

// NewAuth creates an Auth with the given HMAC secret.
func NewAuth(secret string, users wfh.UserDirectory) *Auth {
	return &Auth{Secret: []byte(secret), Users: users}
}

// IssueToken signs a token for the user.
func (a *Auth) IssueToken(u *wfh.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   u.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.Secret)
}

// Authenticate verifies credentials and returns the user on success.
// Inactive accounts fail the same way wrong passwords do.
func (a *Auth) Authenticate(ctx context.Context, email, password string) (*wfh.User, error) {
	u, err := a.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive {
		return nil, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil
	}
	return u, nil
}

// verify parses a bearer token and resolves its subject to a live user.
func (a *Auth) verify(ctx context.Context, tokenStr string) (*wfh.User, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims,
		func(t *jwt.Token) (any, error) {
			return a.Secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, nil
	}

	u, err := a.Users.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive {
		return nil, nil
	}
	return u, nil
}

// RequireAuth rejects requests without a valid bearer token and stores
// the resolved user in the request context.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}

		u, err := a.verify(r.Context(), strings.TrimSpace(header[7:]))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to resolve user", err)
			return
		}
		if u == nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token", nil)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireElevated rejects requests from users without approver or admin
// rights. Must run after RequireAuth.
func RequireElevated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := currentUser(r.Context())
		if u == nil || !u.Role.Elevated() {
			writeError(w, http.StatusForbidden, "Approver or admin rights required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects everyone below admin. User registration is
// admin-only; approvers review requests but do not manage accounts.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := currentUser(r.Context())
		if u == nil || (u.Role != wfh.RoleAdmin && u.Role != wfh.RoleSuperuser) {
			writeError(w, http.StatusForbidden, "Admin rights required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// currentUser returns the authenticated user, or nil outside RequireAuth.
func currentUser(ctx context.Context) *wfh.User {
	u, _ := ctx.Value(userContextKey).(*wfh.User)
	return u
}
