package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/bonchon-studio/statusrental/internal/ledger"
	"github.com/bonchon-studio/statusrental/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserAdminHandler serves user management endpoints.
type UserAdminHandler struct {
	db     *gorm.DB
	ledger *ledger.Ledger
}

// NewUserAdminHandler constructs a UserAdminHandler.
func NewUserAdminHandler(db *gorm.DB, led *ledger.Ledger) *UserAdminHandler {
	return &UserAdminHandler{db: db, ledger: led}
}

// adminUserDTO defines the user row shown in the admin panel.
type adminUserDTO struct {
	ID         uint64    `json:"id"`
	DiscordID  string    `json:"discord_id"`
	Username   string    `json:"username"`
	GlobalName string    `json:"global_name"`
	Avatar     string    `json:"avatar"`
	Email      string    `json:"email"`
	Balance    int64     `json:"balance"`
	IsAdmin    bool      `json:"is_admin"`
	ActiveSubs int64     `json:"active_subs"`
	CreatedAt  time.Time `json:"created_at"`
}

// List returns users newest first with their active subscription count.
func (h *UserAdminHandler) List(c *gin.Context) {
	limit, offset := pagination(c)

	var users []models.User
	if errFind := h.db.WithContext(c.Request.Context()).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query users failed"})
		return
	}

	type subCount struct {
		UserID uint64
		Count  int64
	}
	var counts []subCount
	if errCount := h.db.WithContext(c.Request.Context()).
		Model(&models.Subscription{}).
		Select("user_id, COUNT(*) as count").
		Where("status = ?", models.SubscriptionActive).
		Group("user_id").
		Scan(&counts).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query subscription counts failed"})
		return
	}
	activeByUser := make(map[uint64]int64, len(counts))
	for _, sc := range counts {
		activeByUser[sc.UserID] = sc.Count
	}

	resp := make([]adminUserDTO, 0, len(users))
	for _, user := range users {
		resp = append(resp, adminUserDTO{
			ID:         user.ID,
			DiscordID:  user.DiscordID,
			Username:   user.Username,
			GlobalName: user.GlobalName,
			Avatar:     user.Avatar,
			Email:      user.Email,
			Balance:    user.Balance,
			IsAdmin:    user.IsAdmin,
			ActiveSubs: activeByUser[user.ID],
			CreatedAt:  user.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": resp})
}

// setBalanceRequest defines the balance overwrite request body.
type setBalanceRequest struct {
	Balance *int64 `json:"balance"`
}

// SetBalance overwrites a user's balance through the ledger so the signed
// delta lands on the audit trail.
func (h *UserAdminHandler) SetBalance(c *gin.Context) {
	userID, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var body setBalanceRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.Balance == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "balance is required"})
		return
	}

	result, errAdjust := h.ledger.Adjust(c.Request.Context(), userID, *body.Balance)
	if errAdjust != nil {
		switch {
		case errors.Is(errAdjust, ledger.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(errAdjust, ledger.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "balance must be non-negative"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "adjust balance failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"old_balance": result.OldBalance,
		"new_balance": result.NewBalance,
		"delta":       result.Delta,
	})
}

// setAdminRequest defines the admin flag request body.
type setAdminRequest struct {
	IsAdmin *bool `json:"is_admin"`
}

// SetAdmin grants or revokes the admin flag.
func (h *UserAdminHandler) SetAdmin(c *gin.Context) {
	userID, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var body setAdminRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.IsAdmin == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_admin is required"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("is_admin", *body.IsAdmin)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update user failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": userID, "is_admin": *body.IsAdmin})
}
