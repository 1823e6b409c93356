package db

import (
	"fmt"

	"github.com/bonchon-studio/statusrental/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for all models and enforces the
// natural-key constraints that AutoMigrate cannot express.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errMigrate := conn.AutoMigrate(
		&models.User{},
		&models.Package{},
		&models.Subscription{},
		&models.Transaction{},
		&models.Topup{},
		&models.StatusConfig{},
		&models.Setting{},
	); errMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errMigrate)
	}

	// Duplicate offers once slipped in because only the surrogate key was
	// unique; the pair (name, duration_days) is the real identity of a package.
	if errIndex := conn.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_packages_name_duration ON packages(name, duration_days)",
	).Error; errIndex != nil {
		return fmt.Errorf("db: create package unique index: %w", errIndex)
	}

	return seedDefaultPackages(conn)
}

// seedDefaultPackages inserts the starter offers on a fresh database.
func seedDefaultPackages(conn *gorm.DB) error {
	var count int64
	if errCount := conn.Model(&models.Package{}).Count(&count).Error; errCount != nil {
		return fmt.Errorf("db: count packages: %w", errCount)
	}
	if count > 0 {
		return nil
	}

	defaults := []models.Package{
		{Name: "Bronze", DurationDays: 7, Price: 79, Badge: "🥉", Color: "#CD7F32", IsActive: true, SortOrder: 1},
		{Name: "Silver", DurationDays: 15, Price: 149, Badge: "🥈", Color: "#C0C0C0", IsActive: true, SortOrder: 2},
		{Name: "Gold", DurationDays: 30, Price: 300, Badge: "🥇", Color: "#FFD700", IsPopular: true, IsActive: true, SortOrder: 3},
	}
	if errCreate := conn.Create(&defaults).Error; errCreate != nil {
		return fmt.Errorf("db: seed packages: %w", errCreate)
	}
	return nil
}
