package handlers

import (
	"net/http"

	"github.com/bonchon-studio/statusrental/internal/stats"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StatsHandler serves the admin dashboard aggregates.
type StatsHandler struct {
	db *gorm.DB
}

// NewStatsHandler constructs a StatsHandler.
func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{db: db}
}

// Dashboard returns the dashboard aggregates.
func (h *StatsHandler) Dashboard(c *gin.Context) {
	dash, errStats := stats.DashboardStats(c.Request.Context(), h.db)
	if errStats != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query stats failed"})
		return
	}
	c.JSON(http.StatusOK, dash)
}
