package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bakery_api/internal/utils"
)

const (
	// UserIDHeader carries the customer uid set by the upstream auth proxy.
	UserIDHeader = "X-User-Id"
	UserIDKey    = "user_id"

	maxUserIDLen = 128
)

// OptionalUser records the customer uid when the header is present. Checkout
// uses it to attach guest-or-member orders.
func OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := userIDFromHeader(c); uid != "" {
			c.Set(UserIDKey, uid)
		}
		c.Next()
	}
}

// RequireUser rejects requests without a customer uid.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := userIDFromHeader(c)
		if uid == "" {
			utils.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Sign in required")
			c.Abort()
			return
		}
		c.Set(UserIDKey, uid)
		c.Next()
	}
}

func userIDFromHeader(c *gin.Context) string {
	uid := strings.TrimSpace(c.GetHeader(UserIDHeader))
	if len(uid) > maxUserIDLen {
		return ""
	}
	return uid
}

// GetUserID returns the customer uid from context, or "".
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// UserIDPtr returns the customer uid as a pointer, nil for guests.
func UserIDPtr(c *gin.Context) *string {
	uid := GetUserID(c)
	if uid == "" {
		return nil
	}
	return &uid
}
