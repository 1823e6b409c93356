package models

import "time"

// Package represents a purchasable subscription offer.
//
// The pair (name, duration_days) is unique; db.Migrate creates the composite
// index so duplicate offer rows cannot reappear.
type Package struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name         string `gorm:"type:text;not null"` // Display name.
	DurationDays int    `gorm:"not null"`           // Granted period length in days, positive.
	Price        int64  `gorm:"not null;default:0"` // Price in whole currency units, non-negative.

	Description string `gorm:"type:text"`                   // Marketing copy.
	Badge       string `gorm:"type:text"`                   // Short label shown on the card.
	Color       string `gorm:"type:text;default:'#3B82F6'"` // Accent color.
	IsPopular   bool   `gorm:"not null;default:false"`      // Highlights the card in listings.
	IsActive    bool   `gorm:"not null"`                    // Visible to purchasers when true. No column default: gorm drops defaulted fields from INSERT at their zero value, which would turn an explicit false back into true.
	SortOrder   int    `gorm:"not null;default:0"`          // Listing order, ascending.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
