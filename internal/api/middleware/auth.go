package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/archetype/archetype/internal/api/response"
	"github.com/archetype/archetype/internal/core/auth"
)

const (
	ContextUserID    = response.ContextUserID
	ContextPrincipal = "principal"
)

type TokenValidator interface {
	Validate(token string) (*auth.JWTClaims, error)
}

type AuthMiddleware struct {
	tokens TokenValidator
}

func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			response.Unauthorized(c, "invalid authorization header")
			return
		}

		if !strings.EqualFold(parts[0], "bearer") {
			response.Unauthorized(c, "unsupported authorization type")
			return
		}

		claims, err := m.tokens.Validate(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Unauthorized(c, "invalid token")
			return
		}

		principal := claims.Principal()
		c.Set(ContextUserID, principal.UserID)
		c.Set(ContextPrincipal, principal)
		c.Next()
	}
}

// Helper functions to get context values
func GetUserID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextUserID)
	return id, id != ""
}

func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	val, exists := c.Get(ContextPrincipal)
	if !exists {
		return auth.Principal{}, false
	}

	p, ok := val.(auth.Principal)
	return p, ok
}
