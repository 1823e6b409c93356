package handlers

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/bonchon-studio/statusrental/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatusHandler serves subscription state and display profiles to the bot.
type StatusHandler struct {
	db *gorm.DB
}

// NewStatusHandler constructs a StatusHandler.
func NewStatusHandler(db *gorm.DB) *StatusHandler {
	return &StatusHandler{db: db}
}

// Verify confirms the shared secret is valid.
func (h *StatusHandler) Verify(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"serverTime":    time.Now().UTC().Format(time.RFC3339),
	})
}

// findUser loads a user by the Discord ID path parameter, answering 404 on
// miss. Returns false when a response was already written.
func (h *StatusHandler) findUser(c *gin.Context) (*models.User, bool) {
	discordID := c.Param("discordId")
	if discordID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "discord id is required"})
		return nil, false
	}
	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).Where("discord_id = ?", discordID).First(&user).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query user failed"})
		return nil, false
	}
	return &user, true
}

// activeSubscription loads the user's unexpired active subscription.
func (h *StatusHandler) activeSubscription(c *gin.Context, userID uint64) (*models.Subscription, error) {
	var sub models.Subscription
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Package").
		Where("user_id = ? AND status = ? AND end_date > ?", userID, models.SubscriptionActive, time.Now().UTC()).
		Order("end_date DESC").
		First(&sub).Error
	if errFind != nil {
		return nil, errFind
	}
	return &sub, nil
}

// UserStatus returns the display profile the bot runs for a user with a
// live subscription. This is the one place the stored Discord token is
// readable; the customer API only reports its presence.
func (h *StatusHandler) UserStatus(c *gin.Context) {
	user, ok := h.findUser(c)
	if !ok {
		return
	}

	sub, errSub := h.activeSubscription(c, user.ID)
	if errSub != nil {
		if errors.Is(errSub, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active subscription"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query subscription failed"})
		return
	}

	var cfg models.StatusConfig
	errCfg := h.db.WithContext(c.Request.Context()).Where("user_id = ?", user.ID).First(&cfg).Error
	if errCfg != nil {
		if !errors.Is(errCfg, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query status config failed"})
			return
		}
		cfg = models.StatusConfig{IsEnabled: true}
	}

	subResp := gin.H{
		"status":    sub.Status,
		"end_date":  sub.EndDate,
		"days_left": int(math.Ceil(time.Until(sub.EndDate).Hours() / 24)),
	}
	if sub.Package != nil {
		subResp["package_name"] = sub.Package.Name
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":         user.ID,
			"discord_id": user.DiscordID,
			"username":   user.Username,
		},
		"subscription": subResp,
		"statusConfig": gin.H{
			"page1_text1":   cfg.Page1Text1,
			"page1_text2":   cfg.Page1Text2,
			"page1_text3":   cfg.Page1Text3,
			"page1_image":   cfg.Page1Image,
			"page2_text1":   cfg.Page2Text1,
			"page2_text2":   cfg.Page2Text2,
			"page2_text3":   cfg.Page2Text3,
			"page2_image":   cfg.Page2Image,
			"is_enabled":    cfg.IsEnabled,
			"discord_token": cfg.DiscordToken,
		},
	})
}

// syncStatusRequest defines the display profile fields pushed by the bot.
type syncStatusRequest struct {
	Page1Text1 string `json:"page1_text1"`
	Page1Text2 string `json:"page1_text2"`
	Page1Text3 string `json:"page1_text3"`
	Page1Image string `json:"page1_image"`
	Page2Text1 string `json:"page2_text1"`
	Page2Text2 string `json:"page2_text2"`
	Page2Text3 string `json:"page2_text3"`
	Page2Image string `json:"page2_image"`
	IsEnabled  *bool  `json:"is_enabled"`
}

// SyncStatus upserts the user's display profile from bot-side edits.
func (h *StatusHandler) SyncStatus(c *gin.Context) {
	user, ok := h.findUser(c)
	if !ok {
		return
	}

	var body syncStatusRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	cfg := models.StatusConfig{
		UserID:     user.ID,
		Page1Text1: body.Page1Text1,
		Page1Text2: body.Page1Text2,
		Page1Text3: body.Page1Text3,
		Page1Image: body.Page1Image,
		Page2Text1: body.Page2Text1,
		Page2Text2: body.Page2Text2,
		Page2Text3: body.Page2Text3,
		Page2Image: body.Page2Image,
		IsEnabled:  true,
	}
	if body.IsEnabled != nil {
		cfg.IsEnabled = *body.IsEnabled
	}

	if errUpsert := h.db.WithContext(c.Request.Context()).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"page1_text1", "page1_text2", "page1_text3", "page1_image",
			"page2_text1", "page2_text2", "page2_text3", "page2_image",
			"is_enabled", "updated_at",
		}),
	}).Create(&cfg).Error; errUpsert != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save status config failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "status synced"})
}

// UserProfile returns everything the bot renders for a user: identity,
// subscription, display profile and recent transactions.
func (h *StatusHandler) UserProfile(c *gin.Context) {
	user, ok := h.findUser(c)
	if !ok {
		return
	}

	resp := gin.H{
		"user": gin.H{
			"id":          user.ID,
			"discord_id":  user.DiscordID,
			"username":    user.Username,
			"global_name": user.GlobalName,
			"balance":     user.Balance,
		},
		"subscription": nil,
		"statusConfig": nil,
	}

	if sub, errSub := h.activeSubscription(c, user.ID); errSub == nil {
		subResp := gin.H{
			"status":   sub.Status,
			"end_date": sub.EndDate,
		}
		if sub.Package != nil {
			subResp["package"] = sub.Package.Name
			subResp["duration_days"] = sub.Package.DurationDays
		}
		resp["subscription"] = subResp
	} else if !errors.Is(errSub, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query subscription failed"})
		return
	}

	var cfg models.StatusConfig
	errCfg := h.db.WithContext(c.Request.Context()).Where("user_id = ?", user.ID).First(&cfg).Error
	if errCfg == nil {
		resp["statusConfig"] = gin.H{
			"page1_text1": cfg.Page1Text1,
			"page1_text2": cfg.Page1Text2,
			"page1_text3": cfg.Page1Text3,
			"page1_image": cfg.Page1Image,
			"page2_text1": cfg.Page2Text1,
			"page2_text2": cfg.Page2Text2,
			"page2_text3": cfg.Page2Text3,
			"page2_image": cfg.Page2Image,
			"is_enabled":  cfg.IsEnabled,
			"has_token":   cfg.DiscordToken != "",
		}
	} else if !errors.Is(errCfg, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query status config failed"})
		return
	}

	var transactions []models.Transaction
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(10).
		Find(&transactions).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query transactions failed"})
		return
	}
	recent := make([]gin.H, 0, len(transactions))
	for _, tx := range transactions {
		recent = append(recent, gin.H{
			"type":          tx.Type,
			"amount":        tx.Amount,
			"description":   tx.Description,
			"balance_after": tx.BalanceAfter,
			"created_at":    tx.CreatedAt,
		})
	}
	resp["transactions"] = recent

	c.JSON(http.StatusOK, resp)
}
