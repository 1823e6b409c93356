// Package bot registers the Discord-bot API surface, authenticated by a
// shared static secret.
package bot

import (
	"net/http"

	"github.com/bonchon-studio/statusrental/internal/http/api/bot/handlers"
	"github.com/bonchon-studio/statusrental/internal/ledger"
	"github.com/bonchon-studio/statusrental/internal/security"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterBotRoutes registers the bot endpoints and the topup webhook.
func RegisterBotRoutes(r *gin.Engine, db *gorm.DB, led *ledger.Ledger, botSecret string) {
	if r == nil || db == nil {
		return
	}

	secret := secretMiddleware(botSecret)

	topupHandler := handlers.NewTopupWebhookHandler(db, led)
	r.POST("/api/topup/webhook", secret, topupHandler.Credit)

	botAPI := r.Group("/api/bot")
	botAPI.Use(secret)

	statusHandler := handlers.NewStatusHandler(db)
	botAPI.GET("/verify", statusHandler.Verify)
	botAPI.GET("/user-status/:discordId", statusHandler.UserStatus)
	botAPI.POST("/sync-status/:discordId", statusHandler.SyncStatus)
	botAPI.GET("/user-profile/:discordId", statusHandler.UserProfile)
}

// secretMiddleware authenticates requests with the shared bot secret. Every
// failure shape answers the same 403 so probes learn nothing.
func secretMiddleware(configured string) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := bearerToken(c.GetHeader("Authorization"))
		if !security.SecretEqual(configured, presented) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// bearerToken strips the Bearer prefix, returning "" for any other shape.
func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return ""
	}
	return header[len(prefix):]
}
