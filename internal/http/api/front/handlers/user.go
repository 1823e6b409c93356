package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/bonchon-studio/statusrental/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler serves the authenticated profile endpoint.
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// subscriptionDTO defines the subscription response payload.
type subscriptionDTO struct {
	ID        uint64      `json:"id"`
	Status    string      `json:"status"`
	EndDate   time.Time   `json:"end_date"`
	CreatedAt time.Time   `json:"created_at"`
	Package   *packageDTO `json:"package,omitempty"`
}

func toSubscriptionDTO(s models.Subscription) subscriptionDTO {
	dto := subscriptionDTO{
		ID:        s.ID,
		Status:    s.Status,
		EndDate:   s.EndDate,
		CreatedAt: s.CreatedAt,
	}
	if s.Package != nil {
		pkg := toPackageDTO(*s.Package)
		dto.Package = &pkg
	}
	return dto
}

// Get returns the profile, the active subscription and the status config.
func (h *UserHandler) Get(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; errFind != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	resp := gin.H{
		"user": gin.H{
			"id":            user.ID,
			"discord_id":    user.DiscordID,
			"username":      user.Username,
			"global_name":   user.GlobalName,
			"discriminator": user.Discriminator,
			"avatar":        user.Avatar,
			"email":         user.Email,
			"balance":       user.Balance,
			"is_admin":      user.IsAdmin,
			"created_at":    user.CreatedAt,
		},
		"subscription": nil,
		"statusConfig": nil,
	}

	var sub models.Subscription
	errSub := h.db.WithContext(c.Request.Context()).
		Preload("Package").
		Where("user_id = ? AND status = ? AND end_date > ?", userID, models.SubscriptionActive, time.Now().UTC()).
		Order("end_date DESC").
		First(&sub).Error
	if errSub == nil {
		resp["subscription"] = toSubscriptionDTO(sub)
	} else if !errors.Is(errSub, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query subscription failed"})
		return
	}

	var cfg models.StatusConfig
	errCfg := h.db.WithContext(c.Request.Context()).Where("user_id = ?", userID).First(&cfg).Error
	if errCfg == nil {
		resp["statusConfig"] = toStatusConfigDTO(cfg)
	} else if !errors.Is(errCfg, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query status config failed"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
