package handlers

import (
	"errors"
	"net/http"

	"github.com/bonchon-studio/statusrental/internal/config"
	"github.com/bonchon-studio/statusrental/internal/discord"
	apihttp "github.com/bonchon-studio/statusrental/internal/http"
	"github.com/bonchon-studio/statusrental/internal/models"
	"github.com/bonchon-studio/statusrental/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// stateCookieName holds the OAuth CSRF state between redirect and callback.
const stateCookieName = "oauth_state"

// AuthHandler drives the Discord OAuth login flow.
type AuthHandler struct {
	db         *gorm.DB
	jwtCfg     config.JWTConfig
	discordCfg config.DiscordConfig
	oauth      *discord.OAuthClient
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig, discordCfg config.DiscordConfig, oauth *discord.OAuthClient) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg, discordCfg: discordCfg, oauth: oauth}
}

// Login redirects the browser to the Discord consent page.
func (h *AuthHandler) Login(c *gin.Context) {
	if h.oauth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "discord login is not configured"})
		return
	}
	state := uuid.NewString()
	c.SetCookie(stateCookieName, state, 600, "/", "", false, true)
	c.Redirect(http.StatusFound, h.oauth.AuthCodeURL(state))
}

// Callback exchanges the authorization code, upserts the user and issues the
// session cookie.
func (h *AuthHandler) Callback(c *gin.Context) {
	if h.oauth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "discord login is not configured"})
		return
	}

	state := c.Query("state")
	cookieState, errCookie := c.Cookie(stateCookieName)
	if errCookie != nil || state == "" || state != cookieState {
		c.Redirect(http.StatusFound, "/?error=invalid_state")
		return
	}
	c.SetCookie(stateCookieName, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, "/?error=auth_denied")
		return
	}

	profile, errExchange := h.oauth.Exchange(c.Request.Context(), code)
	if errExchange != nil {
		log.WithError(errExchange).Warn("discord oauth exchange failed")
		c.Redirect(http.StatusFound, "/?error=auth_failed")
		return
	}

	user, errUpsert := h.upsertUser(c, profile)
	if errUpsert != nil {
		log.WithError(errUpsert).Error("user upsert failed")
		c.Redirect(http.StatusFound, "/?error=auth_failed")
		return
	}

	token, errToken := security.GenerateToken(h.jwtCfg.Secret, user.ID, user.DiscordID, user.Username, user.IsAdmin, h.jwtCfg.Expiry())
	if errToken != nil {
		log.WithError(errToken).Error("session token generation failed")
		c.Redirect(http.StatusFound, "/?error=auth_failed")
		return
	}

	c.SetCookie(apihttp.SessionCookieName, token, int(h.jwtCfg.Expiry().Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, "/dashboard.html")
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(apihttp.SessionCookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

// upsertUser creates or refreshes the account keyed by Discord ID. Accounts
// listed in the admin ID allowlist are promoted on every login.
func (h *AuthHandler) upsertUser(c *gin.Context, profile *discord.Profile) (*models.User, error) {
	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).Where("discord_id = ?", profile.ID).First(&user).Error
	if errFind != nil && !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, errFind
	}

	user.DiscordID = profile.ID
	user.Username = profile.Username
	user.Discriminator = profile.Discriminator
	user.GlobalName = profile.GlobalName
	user.Avatar = profile.Avatar
	user.Email = profile.Email
	if h.isConfiguredAdmin(profile.ID) {
		user.IsAdmin = true
	}

	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		if errCreate := h.db.WithContext(c.Request.Context()).Create(&user).Error; errCreate != nil {
			return nil, errCreate
		}
		return &user, nil
	}
	if errSave := h.db.WithContext(c.Request.Context()).Save(&user).Error; errSave != nil {
		return nil, errSave
	}
	return &user, nil
}

func (h *AuthHandler) isConfiguredAdmin(discordID string) bool {
	for _, id := range h.discordCfg.AdminIDs {
		if id == discordID {
			return true
		}
	}
	return false
}
