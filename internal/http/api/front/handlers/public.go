package handlers

import (
	"net/http"

	"github.com/bonchon-studio/statusrental/internal/models"
	"github.com/bonchon-studio/statusrental/internal/settings"
	"github.com/bonchon-studio/statusrental/internal/stats"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PublicHandler serves the endpoints available without a session.
type PublicHandler struct {
	db *gorm.DB
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(db *gorm.DB) *PublicHandler {
	return &PublicHandler{db: db}
}

// Stats returns the landing page aggregates.
func (h *PublicHandler) Stats(c *gin.Context) {
	dash, errStats := stats.DashboardStats(c.Request.Context(), h.db)
	if errStats != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query stats failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"totalUsers":          dash.TotalUsers,
		"activeSubscriptions": dash.ActiveSubscriptions,
		"totalRevenue":        dash.TotalRevenue,
	})
}

// packageDTO defines the package response payload.
type packageDTO struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	DurationDays int    `json:"duration_days"`
	Price        int64  `json:"price"`
	Description  string `json:"description"`
	Badge        string `json:"badge"`
	Color        string `json:"color"`
	IsPopular    bool   `json:"is_popular"`
}

func toPackageDTO(p models.Package) packageDTO {
	return packageDTO{
		ID:           p.ID,
		Name:         p.Name,
		DurationDays: p.DurationDays,
		Price:        p.Price,
		Description:  p.Description,
		Badge:        p.Badge,
		Color:        p.Color,
		IsPopular:    p.IsPopular,
	}
}

// Packages lists purchasable packages in listing order.
func (h *PublicHandler) Packages(c *gin.Context) {
	var packages []models.Package
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("is_active = ?", true).
		Order("sort_order ASC").
		Find(&packages).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query packages failed"})
		return
	}
	resp := make([]packageDTO, 0, len(packages))
	for _, pkg := range packages {
		resp = append(resp, toPackageDTO(pkg))
	}
	c.JSON(http.StatusOK, gin.H{"packages": resp})
}

// Config returns the public site configuration.
func (h *PublicHandler) Config(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"siteName":       settings.SiteName(),
		"topupMinAmount": settings.TopupMinAmount(),
	})
}
