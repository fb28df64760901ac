package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"spotdesk/internal/handlers/render"
)

// ClaimsKey is the gin context key holding the verified token claims
const ClaimsKey = "claims"

// JWTAuth requires an HS256 bearer token signed with secret.
// An empty secret disables the check.
func JWTAuth(secret string) gin.HandlerFunc {
	if secret == "" {
		return func(c *gin.Context) { c.Next() }
	}

	key := []byte(secret)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			render.Error(c, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}

		claims := jwt.RegisteredClaims{}
		_, err := parser.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				message = "Token expired"
			}
			render.Error(c, http.StatusUnauthorized, message, err)
			return
		}

		c.Set(ClaimsKey, &claims)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// IssueToken signs an HS256 token for subject that expires after ttl
func IssueToken(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
