// Package auth implements the credential, token and session layers: bcrypt
// password hashing, signed bearer tokens, and the per-request resolution of
// a token to a user with the two authorization gates the API uses.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/himique/Industial-Automation/models"
	"github.com/himique/Industial-Automation/store"
)

// TokenCookieName is the single cookie convention for bearer tokens. The
// cookie value may carry a "Bearer " prefix; TokenFromRequest strips it.
const TokenCookieName = "access_token"

var (
	// ErrUnauthenticated means no token, an invalid token, an unknown
	// subject, or an inactive user. Deliberately indistinguishable.
	ErrUnauthenticated = errors.New("could not validate credentials")
	// ErrForbidden means an authenticated user without admin rights.
	ErrForbidden = errors.New("administrator privileges are required")
)

// TokenFromRequest extracts the bearer token from the Authorization header,
// falling back to the access_token cookie. Returns "" when neither is set.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return strings.TrimPrefix(cookie.Value, "Bearer ")
	}
	return ""
}

// CurrentUser resolves the request's token to a user record. An unknown
// subject is reported the same way as a bad token so that callers cannot
// learn whether a username exists.
func CurrentUser(ctx context.Context, db *gorm.DB, r *http.Request, secret []byte) (*models.User, error) {
	tokenString := TokenFromRequest(r)
	if tokenString == "" {
		return nil, ErrUnauthenticated
	}
	subject, err := ValidateToken(tokenString, secret)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	user, err := store.FindUserByUsername(ctx, db, subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// RequireAuthenticated is the 401 gate: a valid token for an active user.
func RequireAuthenticated(ctx context.Context, db *gorm.DB, r *http.Request, secret []byte) (*models.User, error) {
	user, err := CurrentUser(ctx, db, r, secret)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// RequireAdmin is the 403 gate: active AND admin, always both.
func RequireAdmin(ctx context.Context, db *gorm.DB, r *http.Request, secret []byte) (*models.User, error) {
	user, err := RequireAuthenticated(ctx, db, r, secret)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		return nil, ErrForbidden
	}
	return user, nil
}
