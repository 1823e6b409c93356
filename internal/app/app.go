// Package app wires configuration, storage, services and the HTTP surfaces
// into a running server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/bonchon-studio/statusrental/internal/config"
	"github.com/bonchon-studio/statusrental/internal/db"
	"github.com/bonchon-studio/statusrental/internal/discord"
	apihttp "github.com/bonchon-studio/statusrental/internal/http"
	"github.com/bonchon-studio/statusrental/internal/http/api/admin"
	"github.com/bonchon-studio/statusrental/internal/http/api/bot"
	"github.com/bonchon-studio/statusrental/internal/http/api/front"
	"github.com/bonchon-studio/statusrental/internal/ledger"
	"github.com/bonchon-studio/statusrental/internal/settings"
	"github.com/bonchon-studio/statusrental/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// shutdownTimeout bounds the graceful drain on exit.
const shutdownTimeout = 10 * time.Second

// Run boots the server and blocks until ctx is cancelled or the listener
// fails.
func Run(ctx context.Context, cfg *config.Config) error {
	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if errRefresh := settings.Refresh(ctx, conn); errRefresh != nil {
		return fmt.Errorf("load settings: %w", errRefresh)
	}

	led := ledger.New(conn)
	ledger.NewSweeper(led, ledger.DefaultSweepInterval).Start(ctx)

	oauthClient := discord.NewOAuthClient(cfg.Discord)
	if oauthClient == nil {
		log.Warn("discord oauth not configured, login disabled")
	}
	notifier := discord.NewNotifier(cfg.Discord.TopupWebhook, cfg.Discord.AdminRoleID)
	if notifier == nil {
		log.Warn("topup webhook not configured, slip notifications disabled")
	}
	if cfg.Discord.BotSecret == "" {
		log.Warn("bot secret not configured, bot surface locked")
	} else {
		log.Debugf("bot surface enabled, secret %s", util.MaskSecret(cfg.Discord.BotSecret))
	}

	engine := buildEngine(cfg)
	front.RegisterFrontRoutes(engine, conn, cfg, oauthClient, led, notifier)
	bot.RegisterBotRoutes(engine, conn, led, cfg.Discord.BotSecret)
	admin.RegisterAdminRoutes(engine, conn, cfg, led)
	registerStatic(engine, cfg.Server.PublicDir)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := server.Shutdown(drainCtx); errShutdown != nil {
			log.WithError(errShutdown).Warn("server shutdown incomplete")
		}
	}()

	log.Infof("listening on :%d", cfg.Server.Port)
	if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
		return errServe
	}
	return nil
}

// buildEngine assembles the gin engine with the shared middlewares.
func buildEngine(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), corsMiddleware())

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		limiter := apihttp.RateLimitMiddleware(rdb, apihttp.DefaultRateLimitMax, apihttp.DefaultRateLimitWindow)
		engine.Use(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				limiter(c)
				return
			}
			c.Next()
		})
	}
	return engine
}

// corsMiddleware answers preflight requests and marks responses for
// browser use from the configured front-end.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// registerStatic serves the site assets when the public directory exists.
// Unmatched GET paths fall back to files under it so /dashboard.html and
// friends resolve without per-page routes.
func registerStatic(engine *gin.Engine, publicDir string) {
	info, errStat := os.Stat(publicDir)
	if errStat != nil || !info.IsDir() {
		log.Debugf("public dir %s not found, static serving disabled", publicDir)
		return
	}

	fileServer := http.FileServer(http.Dir(publicDir))
	engine.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusNotFound)
			return
		}
		requestPath := c.Request.URL.Path
		if strings.HasPrefix(requestPath, "/api/") || strings.HasPrefix(requestPath, "/auth/") {
			c.Status(http.StatusNotFound)
			return
		}
		cleaned := path.Clean("/" + requestPath)
		if cleaned == "/" {
			cleaned = "/index.html"
		}
		if _, errFile := os.Stat(filepath.Join(publicDir, filepath.FromSlash(strings.TrimPrefix(cleaned, "/")))); errFile != nil {
			c.Status(http.StatusNotFound)
			return
		}
		fileServer.ServeHTTP(c.Writer, c.Request)
	})
}
