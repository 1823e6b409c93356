// Package admin registers the admin panel API surface.
package admin

import (
	"net/http"

	"github.com/bonchon-studio/statusrental/internal/config"
	apihttp "github.com/bonchon-studio/statusrental/internal/http"
	"github.com/bonchon-studio/statusrental/internal/http/api/admin/handlers"
	"github.com/bonchon-studio/statusrental/internal/ledger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterAdminRoutes registers the admin endpoints behind session auth and
// the admin flag.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, led *ledger.Ledger) {
	if r == nil || db == nil {
		return
	}

	adminAPI := r.Group("/api/admin")
	adminAPI.Use(apihttp.UserAuthMiddleware(db, cfg.JWT), adminOnlyMiddleware())

	statsHandler := handlers.NewStatsHandler(db)
	adminAPI.GET("/stats", statsHandler.Dashboard)

	userHandler := handlers.NewUserAdminHandler(db, led)
	adminAPI.GET("/users", userHandler.List)
	adminAPI.PUT("/users/:id/balance", userHandler.SetBalance)
	adminAPI.PUT("/users/:id/admin", userHandler.SetAdmin)

	packageHandler := handlers.NewPackageAdminHandler(db)
	adminAPI.GET("/packages", packageHandler.List)
	adminAPI.POST("/packages", packageHandler.Create)
	adminAPI.PUT("/packages/:id", packageHandler.Update)
	adminAPI.PUT("/packages/:id/toggle", packageHandler.Toggle)

	subscriptionHandler := handlers.NewSubscriptionAdminHandler(db)
	adminAPI.GET("/subscriptions", subscriptionHandler.List)

	topupHandler := handlers.NewTopupAdminHandler(db, led)
	adminAPI.GET("/topups", topupHandler.List)
	adminAPI.POST("/topups/:id/approve", topupHandler.Approve)
	adminAPI.POST("/topups/:id/reject", topupHandler.Reject)
	adminAPI.POST("/topup", topupHandler.ManualCredit)
}

// adminOnlyMiddleware rejects sessions without the admin flag.
func adminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, _ := c.Get("isAdmin")
		if admin, ok := isAdmin.(bool); !ok || !admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
