// Package front registers the customer-facing API surface.
package front

import (
	"github.com/bonchon-studio/statusrental/internal/config"
	"github.com/bonchon-studio/statusrental/internal/discord"
	apihttp "github.com/bonchon-studio/statusrental/internal/http"
	"github.com/bonchon-studio/statusrental/internal/http/api/front/handlers"
	"github.com/bonchon-studio/statusrental/internal/ledger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterFrontRoutes registers the public, OAuth and authenticated
// customer routes.
func RegisterFrontRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, oauthClient *discord.OAuthClient, led *ledger.Ledger, notifier *discord.Notifier) {
	if r == nil || db == nil {
		return
	}

	authHandler := handlers.NewAuthHandler(db, cfg.JWT, cfg.Discord, oauthClient)
	auth := r.Group("/auth")
	auth.GET("/discord", authHandler.Login)
	auth.GET("/discord/callback", authHandler.Callback)
	auth.GET("/logout", authHandler.Logout)

	api := r.Group("/api")

	publicHandler := handlers.NewPublicHandler(db)
	api.GET("/stats", publicHandler.Stats)
	api.GET("/packages", publicHandler.Packages)
	api.GET("/config", publicHandler.Config)

	authed := api.Group("")
	authed.Use(apihttp.UserAuthMiddleware(db, cfg.JWT))

	userHandler := handlers.NewUserHandler(db)
	authed.GET("/user", userHandler.Get)

	subscriptionHandler := handlers.NewSubscriptionHandler(db, led)
	authed.GET("/subscriptions", subscriptionHandler.List)
	authed.POST("/subscribe", subscriptionHandler.Subscribe)

	statusHandler := handlers.NewStatusConfigHandler(db)
	authed.GET("/status-config", statusHandler.Get)
	authed.PUT("/status-config", statusHandler.Put)
	authed.PUT("/discord-token", statusHandler.PutDiscordToken)

	transactionHandler := handlers.NewTransactionHandler(db)
	authed.GET("/transactions", transactionHandler.List)

	topupHandler := handlers.NewTopupHandler(db, led, notifier, cfg.Topup)
	authed.POST("/topup/request", topupHandler.Request)
	authed.GET("/topup/:id", topupHandler.Status)
}
