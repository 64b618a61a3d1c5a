package auth

import (
	"errors"
	"net/http"
	"strings"

	"techdeputies/internal/api"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"
	ctxUserRole  = "user_role"
)

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: msg})
}

// Middleware authenticates a bearer access token and stores its claims on the context.
func Middleware(accessTokenSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != "Bearer" {
			unauthorized(c, "invalid authorization header format")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			unauthorized(c, "token is empty")
			return
		}

		claims, err := ValidateToken(tokenString, accessTokenSecret)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenExpired):
				unauthorized(c, "token expired")
			default:
				unauthorized(c, "invalid or malformed token")
			}
			return
		}

		if claims.TokenType != tokenTypeAccess {
			unauthorized(c, "access token required")
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserEmail, claims.Email)
		c.Set(ctxUserRole, claims.Role)

		c.Next()
	}
}

func RequireRole(required Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			unauthorized(c, "user role not found")
			return
		}

		if role != required {
			c.AbortWithStatusJSON(http.StatusForbidden, api.ErrorResponse{Error: "insufficient permissions"})
			return
		}

		c.Next()
	}
}

func GetUserID(c *gin.Context) (int, bool) {
	v, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok
}

func GetUserEmail(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxUserEmail)
	if !exists {
		return "", false
	}
	email, ok := v.(string)
	return email, ok && email != ""
}

func GetUserRole(c *gin.Context) (Role, bool) {
	v, exists := c.Get(ctxUserRole)
	if !exists {
		return "", false
	}
	role, ok := v.(Role)
	return role, ok
}

// SetIdentity stores an authenticated identity on the context.
func SetIdentity(c *gin.Context, userID int, email string, role Role) {
	c.Set(ctxUserID, userID)
	c.Set(ctxUserEmail, email)
	c.Set(ctxUserRole, role)
}
