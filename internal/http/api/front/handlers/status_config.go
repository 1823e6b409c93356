package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bonchon-studio/statusrental/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatusConfigHandler serves the user's bot display profile.
type StatusConfigHandler struct {
	db *gorm.DB
}

// NewStatusConfigHandler constructs a StatusConfigHandler.
func NewStatusConfigHandler(db *gorm.DB) *StatusConfigHandler {
	return &StatusConfigHandler{db: db}
}

// statusConfigDTO defines the status config response payload. The Discord
// token is write-only; only its presence is reported.
type statusConfigDTO struct {
	Page1Text1 string    `json:"page1_text1"`
	Page1Text2 string    `json:"page1_text2"`
	Page1Text3 string    `json:"page1_text3"`
	Page1Image string    `json:"page1_image"`
	Page2Text1 string    `json:"page2_text1"`
	Page2Text2 string    `json:"page2_text2"`
	Page2Text3 string    `json:"page2_text3"`
	Page2Image string    `json:"page2_image"`
	IsEnabled  bool      `json:"is_enabled"`
	HasToken   bool      `json:"has_token"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toStatusConfigDTO(cfg models.StatusConfig) statusConfigDTO {
	return statusConfigDTO{
		Page1Text1: cfg.Page1Text1,
		Page1Text2: cfg.Page1Text2,
		Page1Text3: cfg.Page1Text3,
		Page1Image: cfg.Page1Image,
		Page2Text1: cfg.Page2Text1,
		Page2Text2: cfg.Page2Text2,
		Page2Text3: cfg.Page2Text3,
		Page2Image: cfg.Page2Image,
		IsEnabled:  cfg.IsEnabled,
		HasToken:   cfg.DiscordToken != "",
		UpdatedAt:  cfg.UpdatedAt,
	}
}

// Get returns the current status config, or defaults when none is saved.
func (h *StatusConfigHandler) Get(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var cfg models.StatusConfig
	if errFind := h.db.WithContext(c.Request.Context()).Where("user_id = ?", userID).First(&cfg).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"config": toStatusConfigDTO(models.StatusConfig{IsEnabled: true})})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query status config failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": toStatusConfigDTO(cfg)})
}

// statusConfigRequest defines the writable status config fields.
type statusConfigRequest struct {
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

// Put upserts the status config for the current user.
func (h *StatusConfigHandler) Put(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body statusConfigRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	cfg := models.StatusConfig{
		UserID:     userID,
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

	c.JSON(http.StatusOK, gin.H{"config": toStatusConfigDTO(cfg)})
}

// discordTokenRequest defines the request body for saving the bot token.
type discordTokenRequest struct {
	Token string `json:"token"`
}

// PutDiscordToken stores the user-provided Discord token after a shape
// check. The token is never returned by any endpoint.
func (h *StatusConfigHandler) PutDiscordToken(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body discordTokenRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	token := strings.TrimSpace(body.Token)
	if len(token) < 50 || !strings.Contains(token, ".") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token format"})
		return
	}

	cfg := models.StatusConfig{UserID: userID, IsEnabled: true, DiscordToken: token}
	if errUpsert := h.db.WithContext(c.Request.Context()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"discord_token", "updated_at"}),
	}).Create(&cfg).Error; errUpsert != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save token failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "token saved"})
}
