package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/himique/Industial-Automation/models"
)

var testSecret = []byte("test-secret")

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string, isAdmin, isActive bool) {
	t.Helper()
	hash, err := HashPassword("password")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		IsActive:     true,
	}).Error)
	if !isActive {
		// A zero-value bool with a column default would be dropped from
		// the INSERT, so flip the flag with an explicit update.
		require.NoError(t, db.Model(&models.User{}).
			Where("username = ?", username).Update("is_active", false).Error)
	}
}

func TestTokenFromRequest_Header(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", TokenFromRequest(r))
}

func TestTokenFromRequest_Cookie(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "abc123"})
	assert.Equal(t, "abc123", TokenFromRequest(r))
}

func TestTokenFromRequest_CookieBearerPrefix(t *testing.T) {
	// Some clients store the cookie with the header convention baked in;
	// the prefix must be stripped at this single extraction point.
	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "Bearer abc123"})
	assert.Equal(t, "abc123", TokenFromRequest(r))
}

func TestTokenFromRequest_HeaderWinsOverCookie(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer from-header")
	r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "from-cookie"})
	assert.Equal(t, "from-header", TokenFromRequest(r))
}

func TestTokenFromRequest_NoToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	assert.Equal(t, "", TokenFromRequest(r))
}

func TestCurrentUser_Valid(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "worker", false, true)

	tok, err := IssueToken("worker", testSecret, jwt.SigningMethodHS256, time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+tok)

	user, err := CurrentUser(context.Background(), db, r, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "worker", user.Username)
}

func TestCurrentUser_UnknownSubject(t *testing.T) {
	// A valid token for a deleted/renamed user must look exactly like an
	// invalid token.
	db := newTestDB(t)

	tok, err := IssueToken("ghost", testSecret, jwt.SigningMethodHS256, time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+tok)

	_, err = CurrentUser(context.Background(), db, r, testSecret)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCurrentUser_NoToken(t *testing.T) {
	db := newTestDB(t)
	r := httptest.NewRequest("GET", "/", nil)
	_, err := CurrentUser(context.Background(), db, r, testSecret)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRequireAuthenticated_InactiveUser(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "retired", false, false)

	tok, err := IssueToken("retired", testSecret, jwt.SigningMethodHS256, time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+tok)

	_, err = RequireAuthenticated(context.Background(), db, r, testSecret)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRequireAdmin(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "boss", true, true)
	seedUser(t, db, "worker", false, true)
	seedUser(t, db, "ex-boss", true, false)

	cases := []struct {
		username string
		wantErr  error
	}{
		{"boss", nil},
		{"worker", ErrForbidden},
		// An inactive admin is denied even though the admin flag is set.
		{"ex-boss", ErrUnauthenticated},
	}
	for _, tc := range cases {
		tok, err := IssueToken(tc.username, testSecret, jwt.SigningMethodHS256, time.Hour)
		require.NoError(t, err)

		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer "+tok)

		user, err := RequireAdmin(context.Background(), db, r, testSecret)
		if tc.wantErr == nil {
			require.NoError(t, err, tc.username)
			assert.Equal(t, tc.username, user.Username)
		} else {
			assert.ErrorIs(t, err, tc.wantErr, tc.username)
		}
	}
}
