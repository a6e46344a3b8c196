package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/wholesale-shop/internal/apperr"
	"github.com/01moynul/wholesale-shop/internal/auth"
)

const (
	userIDKey    = "userID"
	userEmailKey = "userEmail"
)

// Auth rejects requests without a valid bearer token and stores the caller's
// id on the context for the handlers.
func Auth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header required")
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "Invalid token format (must be Bearer)")
			return
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}
		userID, _ := claims.UserID()

		c.Set(userIDKey, userID)
		c.Set(userEmailKey, claims.Email)
		c.Next()
	}
}

// UserID returns the authenticated caller's id, if Auth ran.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func abortUnauthorized(c *gin.Context, msg string) {
	err := apperr.Unauthorized("%s", msg)
	c.AbortWithStatusJSON(apperr.HTTPStatus(err.Kind), ErrorResponse{Error: err.Kind, Message: err.Message})
}
