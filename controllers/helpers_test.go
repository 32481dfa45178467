package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/himique/Industial-Automation/auth"
	"github.com/himique/Industial-Automation/config"
	"github.com/himique/Industial-Automation/middlewares"
	"github.com/himique/Industial-Automation/models"
	"github.com/himique/Industial-Automation/store"
)

// setupServer builds a router with the production routes against a fresh
// in-memory database. Tests in this package share the config globals, so
// they do not run in parallel.
func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, MigrateModels(db))

	config.C = config.Settings{
		SecretKey:     []byte("test-secret"),
		SigningMethod: jwt.SigningMethodHS256,
		TokenTTL:      time.Hour,
		ModelsDir:     t.TempDir(),
		CookieSecure:  false,
	}

	r := gin.New()
	r.POST("/auth/token", Login)
	r.POST("/graphql", GraphQL)
	r.GET("/ws/catalog", HandleCatalogFeed)

	authed := r.Group("/")
	authed.Use(middlewares.RequireAuthenticated())
	authed.GET("/auth/token/me", Me)

	admin := r.Group("/")
	admin.Use(middlewares.RequireAdmin())
	admin.POST("/upload-model/:productId", UploadModel)

	return r
}

func seedUser(t *testing.T, username, password string, isAdmin, isActive bool) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	_, created, err := store.EnsureUser(context.Background(), config.DB, username, hash, isAdmin)
	require.NoError(t, err)
	require.True(t, created)
	if !isActive {
		require.NoError(t, config.DB.Model(&models.User{}).
			Where("username = ?", username).Update("is_active", false).Error)
	}
}

// login posts the credential form and returns the response.
func login(r *gin.Engine, username, password string) *httptest.ResponseRecorder {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest("POST", "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// adminCookie logs the user in and returns the access_token cookie.
func adminCookie(t *testing.T, r *gin.Engine, username, password string) *http.Cookie {
	t.Helper()
	w := login(r, username, password)
	require.Equal(t, http.StatusOK, w.Code)
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == auth.TokenCookieName {
			return cookie
		}
	}
	t.Fatal("no access_token cookie in login response")
	return nil
}

// doGraphQL posts a query and decodes the standard {data, errors} envelope.
func doGraphQL(t *testing.T, r *gin.Engine, query string, variables map[string]interface{}, cookie *http.Cookie) map[string]interface{} {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func graphqlErrors(result map[string]interface{}) []interface{} {
	errs, _ := result["errors"].([]interface{})
	return errs
}
