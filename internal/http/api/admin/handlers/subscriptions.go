package handlers

import (
	"net/http"
	"time"

	"github.com/bonchon-studio/statusrental/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SubscriptionAdminHandler serves the subscription listing.
type SubscriptionAdminHandler struct {
	db *gorm.DB
}

// NewSubscriptionAdminHandler constructs a SubscriptionAdminHandler.
func NewSubscriptionAdminHandler(db *gorm.DB) *SubscriptionAdminHandler {
	return &SubscriptionAdminHandler{db: db}
}

// adminSubscriptionDTO defines the subscription row shown in the admin
// panel, joined with the user and package.
type adminSubscriptionDTO struct {
	ID          uint64    `json:"id"`
	Status      string    `json:"status"`
	EndDate     time.Time `json:"end_date"`
	CreatedAt   time.Time `json:"created_at"`
	PackageName string    `json:"package_name"`
	Badge       string    `json:"badge"`
	Username    string    `json:"username"`
	DiscordID   string    `json:"discord_id"`
	Avatar      string    `json:"avatar"`
}

// List returns subscriptions newest first, optionally filtered by status.
func (h *SubscriptionAdminHandler) List(c *gin.Context) {
	limit, offset := pagination(c)

	query := h.db.WithContext(c.Request.Context()).
		Preload("User").
		Preload("Package").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var subs []models.Subscription
	if errFind := query.Find(&subs).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query subscriptions failed"})
		return
	}

	resp := make([]adminSubscriptionDTO, 0, len(subs))
	for _, sub := range subs {
		dto := adminSubscriptionDTO{
			ID:        sub.ID,
			Status:    sub.Status,
			EndDate:   sub.EndDate,
			CreatedAt: sub.CreatedAt,
		}
		if sub.Package != nil {
			dto.PackageName = sub.Package.Name
			dto.Badge = sub.Package.Badge
		}
		if sub.User != nil {
			dto.Username = sub.User.Username
			dto.DiscordID = sub.User.DiscordID
			dto.Avatar = sub.User.Avatar
		}
		resp = append(resp, dto)
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": resp})
}
