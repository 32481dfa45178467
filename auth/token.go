package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every validation failure: bad signature, malformed
// structure, expiry. Callers must not distinguish these cases.
var ErrInvalidToken = errors.New("invalid or expired token")

// IssueToken signs a token carrying the subject (username) and an expiry of
// now+ttl with the given HMAC method and secret.
func IssueToken(subject string, secret []byte, method jwt.SigningMethod, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(method, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})
	return token.SignedString(secret)
}

// ValidateToken verifies signature and expiry and returns the subject claim.
// Any failure yields ErrInvalidToken.
func ValidateToken(tokenString string, secret []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
