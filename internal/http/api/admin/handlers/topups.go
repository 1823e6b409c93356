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

// TopupAdminHandler serves topup review and manual credits.
type TopupAdminHandler struct {
	db     *gorm.DB
	ledger *ledger.Ledger
}

// NewTopupAdminHandler constructs a TopupAdminHandler.
func NewTopupAdminHandler(db *gorm.DB, led *ledger.Ledger) *TopupAdminHandler {
	return &TopupAdminHandler{db: db, ledger: led}
}

// adminTopupDTO defines the topup row shown in the admin panel.
type adminTopupDTO struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	Username  string    `json:"username"`
	DiscordID string    `json:"discord_id"`
	Amount    int64     `json:"amount"`
	Reference string    `json:"reference"`
	Source    string    `json:"source"`
	SlipName  string    `json:"slip_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// List returns topups newest first, joined with the user.
func (h *TopupAdminHandler) List(c *gin.Context) {
	limit, offset := pagination(c)

	var topups []models.Topup
	if errFind := h.db.WithContext(c.Request.Context()).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&topups).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query topups failed"})
		return
	}

	resp := make([]adminTopupDTO, 0, len(topups))
	for _, topup := range topups {
		dto := adminTopupDTO{
			ID:        topup.ID,
			UserID:    topup.UserID,
			Amount:    topup.Amount,
			Reference: topup.Reference,
			Source:    topup.Source,
			SlipName:  topup.SlipName,
			CreatedAt: topup.CreatedAt,
			UpdatedAt: topup.UpdatedAt,
		}
		if topup.User != nil {
			dto.Username = topup.User.Username
			dto.DiscordID = topup.User.DiscordID
		}
		resp = append(resp, dto)
	}
	c.JSON(http.StatusOK, gin.H{"topups": resp})
}

// reviewError maps ledger review failures to responses.
func reviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrTopupNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "topup not found"})
	case errors.Is(err, ledger.ErrTopupReviewed):
		c.JSON(http.StatusConflict, gin.H{"error": "topup already reviewed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "review topup failed"})
	}
}

// Approve credits a pending slip upload.
func (h *TopupAdminHandler) Approve(c *gin.Context) {
	topupID, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid topup id"})
		return
	}

	result, errApprove := h.ledger.ApprovePending(c.Request.Context(), topupID)
	if errApprove != nil {
		reviewError(c, errApprove)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "topup approved",
		"new_balance": result.NewBalance,
	})
}

// Reject declines a pending slip upload without touching the balance.
func (h *TopupAdminHandler) Reject(c *gin.Context) {
	topupID, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid topup id"})
		return
	}

	if errReject := h.ledger.RejectPending(c.Request.Context(), topupID); errReject != nil {
		reviewError(c, errReject)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "topup rejected"})
}

// manualCreditRequest defines the manual topup request body.
type manualCreditRequest struct {
	UserID    uint64 `json:"user_id"`
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
}

// ManualCredit credits a user's balance from the admin panel.
func (h *TopupAdminHandler) ManualCredit(c *gin.Context) {
	var body manualCreditRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	reference := body.Reference
	if reference == "" {
		reference = "Admin manual"
	}

	result, errCredit := h.ledger.Credit(c.Request.Context(), body.UserID, body.Amount, reference, models.TopupSourceAdmin, "Admin manual topup")
	if errCredit != nil {
		switch {
		case errors.Is(errCredit, ledger.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		case errors.Is(errCredit, ledger.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "credit failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"new_balance": result.NewBalance,
		"topup_id":    result.TopupID,
	})
}
