// Package http holds gin middlewares shared by the API surfaces.
package http

import (
	"net/http"
	"strings"

	"github.com/bonchon-studio/statusrental/internal/config"
	"github.com/bonchon-studio/statusrental/internal/models"
	"github.com/bonchon-studio/statusrental/internal/security"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SessionCookieName is the cookie carrying the session JWT.
const SessionCookieName = "token"

// UserAuthMiddleware validates session JWTs and loads the user into context.
// The token is read from the session cookie, falling back to a bearer
// Authorization header for non-browser clients.
func UserAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, errJWT := security.ParseToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		c.Set("userID", user.ID)
		c.Set("isAdmin", user.IsAdmin)
		c.Next()
	}
}

// extractToken pulls the JWT from the cookie or the Authorization header.
func extractToken(c *gin.Context) string {
	if cookie, errCookie := c.Cookie(SessionCookieName); errCookie == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return ""
	}
	return strings.TrimSpace(token)
}
