package httpapi

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	personIDKey     = "person_id"
	adminHeader     = "X-Admin-Token"
	bearerPrefix    = "Bearer "
	tokenIssuer     = "camp-signup"
	defaultTokenTTL = 14 * 24 * time.Hour
)

// Authenticator verifies HS256 bearer tokens whose subject is a person id
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an authenticator for the shared secret
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// IssueToken signs a token for the person. A zero ttl uses the default lifetime.
func (a *Authenticator) IssueToken(personID string, ttl time.Duration) (string, error) {
	if personID == "" {
		return "", errors.New("person id is required")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   personID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// PersonID validates a token and returns its subject
func (a *Authenticator) PersonID(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// RequirePerson rejects requests without a valid bearer token and stores the person id
func (a *Authenticator) RequirePerson() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		personID, err := a.PersonID(header[len(bearerPrefix):])
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}

		c.Set(personIDKey, personID)
		c.Next()
	}
}

// RequireAdmin guards the batch triggers with a shared token
func RequireAdmin(token string) gin.HandlerFunc {
	expected := []byte(token)
	return func(c *gin.Context) {
		given := []byte(c.GetHeader(adminHeader))
		if subtle.ConstantTimeCompare(given, expected) != 1 {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "invalid admin token")
			return
		}
		c.Next()
	}
}
