// Package handlers implements the bot surface endpoints.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bonchon-studio/statusrental/internal/ledger"
	"github.com/bonchon-studio/statusrental/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TopupWebhookHandler credits balances for payments confirmed by the bot.
type TopupWebhookHandler struct {
	db     *gorm.DB
	ledger *ledger.Ledger
}

// NewTopupWebhookHandler constructs a TopupWebhookHandler.
func NewTopupWebhookHandler(db *gorm.DB, led *ledger.Ledger) *TopupWebhookHandler {
	return &TopupWebhookHandler{db: db, ledger: led}
}

// topupWebhookRequest defines the webhook request body.
type topupWebhookRequest struct {
	DiscordID string `json:"discord_id"`
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
}

// Credit records a bot-confirmed payment and credits the user's balance.
func (h *TopupWebhookHandler) Credit(c *gin.Context) {
	var body topupWebhookRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	discordID := strings.TrimSpace(body.DiscordID)
	if discordID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "discord_id is required"})
		return
	}
	if body.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).Where("discord_id = ?", discordID).First(&user).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query user failed"})
		return
	}

	result, errCredit := h.ledger.Credit(c.Request.Context(), user.ID, body.Amount, body.Reference, models.TopupSourceDiscordBot, "Topup via Discord bot")
	if errCredit != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "credit failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "balance credited",
		"new_balance": result.NewBalance,
		"topup_id":    result.TopupID,
	})
}
