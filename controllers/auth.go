package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/himique/Industial-Automation/auth"
	"github.com/himique/Industial-Automation/config"
	"github.com/himique/Industial-Automation/middlewares"
	"github.com/himique/Industial-Automation/models"
	"github.com/himique/Industial-Automation/store"
)

// Login authenticates username+password form credentials and returns a
// bearer token, also set as an http-only cookie. Unknown user and wrong
// password produce the same response.
func Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, err := store.FindUserByUsername(c.Request.Context(), config.DB, username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if user == nil || !user.IsActive || !auth.VerifyPassword(password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect username or password"})
		return
	}

	token, err := auth.IssueToken(user.Username, config.C.SecretKey, config.C.SigningMethod, config.C.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error generating token"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		auth.TokenCookieName,
		token,
		int(config.C.TokenTTL.Seconds()),
		"/",
		"",
		config.C.CookieSecure,
		true, // http-only
	)
	c.JSON(http.StatusOK, gin.H{
		"message":      "Login successful",
		"access_token": token,
		"token_type":   "bearer",
	})
}

// Me returns the authenticated user's username. The RequireAuthenticated
// middleware has already resolved the user.
func Me(c *gin.Context) {
	user := c.MustGet(middlewares.UserKey).(*models.User)
	c.JSON(http.StatusOK, gin.H{"username": user.Username})
}
