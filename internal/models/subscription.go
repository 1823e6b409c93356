package models

import "time"

// Subscription statuses.
const (
	// SubscriptionActive marks a currently granted period.
	SubscriptionActive = "active"
	// SubscriptionCancelled marks a period revoked by an admin.
	SubscriptionCancelled = "cancelled"
	// SubscriptionExpired marks a period whose end date has passed.
	SubscriptionExpired = "expired"
)

// Subscription represents a user's access period tied to a package.
//
// At most one row per user is active with end_date in the future; purchases
// extend that row instead of inserting a second one.
type Subscription struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID    uint64 `gorm:"not null;index"` // Owning user.
	PackageID uint64 `gorm:"not null;index"` // Package purchased at creation time.

	Status  string    `gorm:"type:text;not null;default:'active';index"` // active, cancelled or expired.
	EndDate time.Time `gorm:"not null;index"`                            // Access end timestamp.

	User    *User    `gorm:"foreignKey:UserID"`    // Owning user record.
	Package *Package `gorm:"foreignKey:PackageID"` // Historical package record.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
