package db

import (
	"testing"

	"github.com/bonchon-studio/statusrental/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func TestMigrateCreatesSchema(t *testing.T) {
	conn, errOpen := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}

	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	for _, table := range []string{"users", "packages", "subscriptions", "transactions", "topups", "status_configs", "settings"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
}

func TestMigrateRejectsDuplicatePackageOffer(t *testing.T) {
	conn, errOpen := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	first := models.Package{Name: "Diamond", DurationDays: 90, Price: 500, IsActive: true}
	if errCreate := conn.Create(&first).Error; errCreate != nil {
		t.Fatalf("create package: %v", errCreate)
	}

	duplicate := models.Package{Name: "Diamond", DurationDays: 90, Price: 450, IsActive: true}
	if errCreate := conn.Create(&duplicate).Error; errCreate == nil {
		t.Fatalf("expected unique index violation for duplicate (name, duration_days)")
	}

	differentDuration := models.Package{Name: "Diamond", DurationDays: 180, Price: 900, IsActive: true}
	if errCreate := conn.Create(&differentDuration).Error; errCreate != nil {
		t.Fatalf("create package with different duration: %v", errCreate)
	}
}

func TestMigratePersistsExplicitFalseBooleans(t *testing.T) {
	conn, errOpen := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	hidden := models.Package{Name: "Hidden", DurationDays: 7, Price: 50, IsActive: false}
	if errCreate := conn.Create(&hidden).Error; errCreate != nil {
		t.Fatalf("create package: %v", errCreate)
	}
	var pkg models.Package
	if errFind := conn.First(&pkg, hidden.ID).Error; errFind != nil {
		t.Fatalf("reload package: %v", errFind)
	}
	if pkg.IsActive {
		t.Fatal("package created with is_active=false read back active")
	}

	upsert := func(enabled bool) {
		cfg := models.StatusConfig{UserID: 1, IsEnabled: enabled}
		if errUpsert := conn.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_enabled", "updated_at"}),
		}).Create(&cfg).Error; errUpsert != nil {
			t.Fatalf("upsert status config: %v", errUpsert)
		}
	}
	upsert(true)
	upsert(false)

	var cfg models.StatusConfig
	if errFind := conn.Where("user_id = ?", 1).First(&cfg).Error; errFind != nil {
		t.Fatalf("reload status config: %v", errFind)
	}
	if cfg.IsEnabled {
		t.Fatal("status config disabled via upsert read back enabled")
	}
}

func TestMigrateSeedsDefaultPackagesOnce(t *testing.T) {
	conn, errOpen := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	var count int64
	if errCount := conn.Model(&models.Package{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count packages: %v", errCount)
	}
	if count == 0 {
		t.Fatalf("expected seeded packages on fresh database")
	}

	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("second migrate: %v", errMigrate)
	}
	var after int64
	if errCount := conn.Model(&models.Package{}).Count(&after).Error; errCount != nil {
		t.Fatalf("count packages: %v", errCount)
	}
	if after != count {
		t.Fatalf("expected seed to be idempotent, got %d then %d rows", count, after)
	}
}
