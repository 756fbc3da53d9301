package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/notevault/core/internal/pkg/jwt"
	"github.com/notevault/core/internal/pkg/response"
)

const ContextKeyUserID = "user_id"

// Auth returns a middleware that enforces JWT authentication.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := jwt.Parse(extractToken(c))
		if err != nil || claims.UserID == "" {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// IsAuthenticated reports whether the request carries an authenticated user.
func IsAuthenticated(c *gin.Context) bool {
	return UserID(c) != ""
}

// UserID returns the authenticated user id, or "" if unauthenticated.
func UserID(c *gin.Context) string {
	v, ok := c.Get(ContextKeyUserID)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}

// NormalizeToken strips the optional Bearer prefix from a raw token value.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[len("bearer "):])
	}
	return token
}

func extractToken(c *gin.Context) string {
	if token := NormalizeToken(c.GetHeader("Authorization")); token != "" {
		return token
	}
	if token := NormalizeToken(c.Query("token")); token != "" {
		return token
	}
	if raw, err := c.Cookie("nv-token"); err == nil {
		return NormalizeToken(raw)
	}
	return ""
}
