// Package stats computes the aggregates shown on the landing page and the
// admin dashboard.
package stats

import (
	"context"
	"time"

	"github.com/bonchon-studio/statusrental/internal/models"
	"gorm.io/gorm"
)

// Dashboard holds the dashboard aggregates.
type Dashboard struct {
	TotalUsers          int64 `json:"totalUsers"`
	ActiveSubscriptions int64 `json:"activeSubscriptions"`
	TotalRevenue        int64 `json:"totalRevenue"`
	ActivePackages      int64 `json:"activePackages"`
}

// DashboardStats loads the dashboard aggregates. Revenue counts realized
// topups only; pending and rejected slips are excluded.
func DashboardStats(ctx context.Context, db *gorm.DB) (*Dashboard, error) {
	out := &Dashboard{}

	if errCount := db.WithContext(ctx).Model(&models.User{}).Count(&out.TotalUsers).Error; errCount != nil {
		return nil, errCount
	}

	now := time.Now().UTC()
	if errCount := db.WithContext(ctx).Model(&models.Subscription{}).
		Where("status = ? AND end_date > ?", models.SubscriptionActive, now).
		Count(&out.ActiveSubscriptions).Error; errCount != nil {
		return nil, errCount
	}

	var revenue *int64
	if errSum := db.WithContext(ctx).Model(&models.Topup{}).
		Where("source IN ?", []string{models.TopupSourceDiscordBot, models.TopupSourceAdmin, models.TopupSourceApproved}).
		Select("SUM(amount)").
		Scan(&revenue).Error; errSum != nil {
		return nil, errSum
	}
	if revenue != nil {
		out.TotalRevenue = *revenue
	}

	if errCount := db.WithContext(ctx).Model(&models.Package{}).
		Where("is_active = ?", true).
		Count(&out.ActivePackages).Error; errCount != nil {
		return nil, errCount
	}
	return out, nil
}
