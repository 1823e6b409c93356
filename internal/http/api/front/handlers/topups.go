package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bonchon-studio/statusrental/internal/config"
	"github.com/bonchon-studio/statusrental/internal/discord"
	"github.com/bonchon-studio/statusrental/internal/ledger"
	"github.com/bonchon-studio/statusrental/internal/models"
	"github.com/bonchon-studio/statusrental/internal/settings"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TopupHandler serves slip-upload topup requests.
type TopupHandler struct {
	db       *gorm.DB
	ledger   *ledger.Ledger
	notifier *discord.Notifier
	cfg      config.TopupConfig
}

// NewTopupHandler constructs a TopupHandler.
func NewTopupHandler(db *gorm.DB, led *ledger.Ledger, notifier *discord.Notifier, cfg config.TopupConfig) *TopupHandler {
	return &TopupHandler{db: db, ledger: led, notifier: notifier, cfg: cfg}
}

// Request accepts a payment slip upload and records a pending topup. The
// slip is relayed to the review channel best-effort; relay failures never
// fail the request.
func (h *TopupHandler) Request(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	amount, errAmount := strconv.ParseInt(c.PostForm("amount"), 10, 64)
	if errAmount != nil || amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}
	if minAmount := settings.TopupMinAmount(); amount < minAmount {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("minimum topup amount is %d", minAmount)})
		return
	}

	file, header, errFile := c.Request.FormFile("slip")
	if errFile != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment slip is required"})
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > h.cfg.MaxSlipSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slip file too large"})
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slip must be an image"})
		return
	}

	slipData, errRead := io.ReadAll(io.LimitReader(file, h.cfg.MaxSlipSize+1))
	if errRead != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read slip failed"})
		return
	}
	if int64(len(slipData)) > h.cfg.MaxSlipSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slip file too large"})
		return
	}

	reference := uuid.NewString()
	slipName := fmt.Sprintf("slip_%d_%s%s", userID, reference, filepath.Ext(header.Filename))

	topup, errSubmit := h.ledger.SubmitPending(c.Request.Context(), userID, amount, reference, slipName)
	if errSubmit != nil {
		if errors.Is(errSubmit, ledger.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submit topup failed"})
		return
	}

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; errFind == nil {
		h.notifier.NotifyTopup(c.Request.Context(), discord.TopupNotice{
			UserID:      user.ID,
			DiscordID:   user.DiscordID,
			DisplayName: user.GlobalName,
			Amount:      amount,
			SlipName:    slipName,
			SlipData:    slipData,
			ContentType: contentType,
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        topup.ID,
		"reference": topup.Reference,
		"amount":    topup.Amount,
		"status":    "pending",
	})
}

// Status polls the review state of the user's own topup request.
func (h *TopupHandler) Status(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	topupID, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid topup id"})
		return
	}

	var topup models.Topup
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND user_id = ?", topupID, userID).
		First(&topup).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "topup not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query topup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         topup.ID,
		"reference":  topup.Reference,
		"amount":     topup.Amount,
		"status":     topupStatus(topup.Source),
		"created_at": topup.CreatedAt,
		"updated_at": topup.UpdatedAt,
	})
}

// topupStatus maps the stored source to the poller-facing state.
func topupStatus(source string) string {
	switch source {
	case models.TopupSourceWebsitePending:
		return "pending"
	case models.TopupSourceApproved:
		return "approved"
	case models.TopupSourceRejected:
		return "rejected"
	default:
		return "completed"
	}
}
