package middleware

import (
	"errors"
	"net/http"
	"strings"

	"food-ordering-api/auth"
	"food-ordering-api/models"
	"food-ordering-api/policy"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const userKey = "currentUser"

// AuthRequired resolves the caller's identity from the session cookie
// (fallback: Authorization Bearer header, for non-browser clients), verifies
// the token and loads the full user record. It never extends or refreshes
// the token. Each failure carries a stable 401 sub-code so clients can tell
// "no session" apart from "stale session".
func AuthRequired(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			abortUnauthorized(c, "NO_TOKEN", "Not authorized, no token")
			return
		}

		userID, err := auth.ParseToken(tokenStr, secret)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				abortUnauthorized(c, "TOKEN_EXPIRED", "Session expired, please log in again")
				return
			}
			abortUnauthorized(c, "TOKEN_INVALID", "Not authorized, token failed")
			return
		}

		// Token may outlive the account it was issued for.
		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			abortUnauthorized(c, "USER_NOT_FOUND", "User not found")
			return
		}

		c.Set(userKey, &user)
		c.Next()
	}
}

// RoleRequired applies the policy engine's role gate for an action.
// Ownership and self-scope checks still happen in the handlers, after the
// target's ownership chain is resolved.
func RoleRequired(action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abortUnauthorized(c, "NO_TOKEN", "Not authorized, no token")
			return
		}
		if err := policy.AllowRole(user, action); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Access denied for role " + string(user.Role),
				"code":  "FORBIDDEN",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by AuthRequired, or nil.
func CurrentUser(c *gin.Context) *models.User {
	val, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := val.(*models.User)
	return user
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(auth.CookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func abortUnauthorized(c *gin.Context, code, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "code": code})
}
