package handlers

import (
	"net/http"
	"time"

	"github.com/bonchon-studio/statusrental/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// transactionHistoryLimit caps the history returned to the dashboard.
const transactionHistoryLimit = 50

// TransactionHandler serves the user's balance history.
type TransactionHandler struct {
	db *gorm.DB
}

// NewTransactionHandler constructs a TransactionHandler.
func NewTransactionHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{db: db}
}

// transactionDTO defines the transaction response payload.
type transactionDTO struct {
	ID           uint64    `json:"id"`
	Type         string    `json:"type"`
	Amount       int64     `json:"amount"`
	Description  string    `json:"description"`
	BalanceAfter int64     `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}

func toTransactionDTO(t models.Transaction) transactionDTO {
	return transactionDTO{
		ID:           t.ID,
		Type:         t.Type,
		Amount:       t.Amount,
		Description:  t.Description,
		BalanceAfter: t.BalanceAfter,
		CreatedAt:    t.CreatedAt,
	}
}

// List returns the user's recent transactions, newest first.
func (h *TransactionHandler) List(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var transactions []models.Transaction
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(transactionHistoryLimit).
		Find(&transactions).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query transactions failed"})
		return
	}

	resp := make([]transactionDTO, 0, len(transactions))
	for _, tx := range transactions {
		resp = append(resp, toTransactionDTO(tx))
	}
	c.JSON(http.StatusOK, gin.H{"transactions": resp})
}
