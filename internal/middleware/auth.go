package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TokenPrefix marks tokens minted for this API.
const TokenPrefix = "soc_"

// AuthMiddleware guards the API with a single shared bearer token. The
// society runs one treasurer screen, not a user directory, so per-user
// identity lives outside this service.
type AuthMiddleware struct {
	token string
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(token string) *AuthMiddleware {
	return &AuthMiddleware{token: token}
}

// GenerateToken mints a fresh API token for the deployment's configuration.
func GenerateToken() string {
	return TokenPrefix + uuid.NewString()
}

// Authenticate returns an Echo middleware that validates the bearer token
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorizedError(c, "Missing authorization header")
			}

			// Check Bearer prefix
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return unauthorizedError(c, "Invalid authorization header format")
			}

			token := parts[1]
			if !strings.HasPrefix(token, TokenPrefix) {
				return unauthorizedError(c, "Invalid token format")
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(m.token)) != 1 {
				return unauthorizedError(c, "Invalid API token")
			}

			return next(c)
		}
	}
}
