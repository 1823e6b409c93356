package handlers

import (
	"errors"
	"net/http"

	"github.com/bonchon-studio/statusrental/internal/ledger"
	"github.com/bonchon-studio/statusrental/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SubscriptionHandler serves subscription listing and purchase.
type SubscriptionHandler struct {
	db     *gorm.DB
	ledger *ledger.Ledger
}

// NewSubscriptionHandler constructs a SubscriptionHandler.
func NewSubscriptionHandler(db *gorm.DB, led *ledger.Ledger) *SubscriptionHandler {
	return &SubscriptionHandler{db: db, ledger: led}
}

// List returns the user's subscriptions, newest first.
func (h *SubscriptionHandler) List(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var subs []models.Subscription
	if errFind := h.db.WithContext(c.Request.Context()).
		Preload("Package").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subs).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query subscriptions failed"})
		return
	}

	resp := make([]subscriptionDTO, 0, len(subs))
	for _, sub := range subs {
		resp = append(resp, toSubscriptionDTO(sub))
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": resp})
}

// subscribeRequest defines the request body for a purchase.
type subscribeRequest struct {
	PackageID uint64 `json:"package_id"`
}

// Subscribe purchases a package for the current user.
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body subscribeRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.PackageID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "package_id is required"})
		return
	}

	result, errPurchase := h.ledger.Purchase(c.Request.Context(), userID, body.PackageID)
	if errPurchase != nil {
		var insufficient *ledger.InsufficientBalanceError
		switch {
		case errors.As(errPurchase, &insufficient):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":    "insufficient balance",
				"required": insufficient.Required,
				"current":  insufficient.Current,
			})
		case errors.Is(errPurchase, ledger.ErrPackageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "package not found"})
		case errors.Is(errPurchase, ledger.ErrUserNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "purchase failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "subscription activated",
		"new_balance":  result.NewBalance,
		"extended":     result.Extended,
		"subscription": toSubscriptionDTO(*result.Subscription),
	})
}
