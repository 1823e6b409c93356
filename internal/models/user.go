package models

import "time"

// User represents a Discord-authenticated customer account.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	DiscordID     string `gorm:"type:text;not null;uniqueIndex"` // External Discord identity, upsert key.
	Username      string `gorm:"type:text;not null"`             // Discord username.
	Discriminator string `gorm:"type:text;not null;default:'0'"` // Legacy Discord discriminator.
	GlobalName    string `gorm:"type:text"`                      // Discord display name.
	Avatar        string `gorm:"type:text"`                      // Avatar hash.
	Email         string `gorm:"type:text"`                      // Email from the OAuth scope, may be empty.

	Balance int64 `gorm:"not null;default:0"`     // Wallet balance in whole currency units.
	IsAdmin bool  `gorm:"not null;default:false"` // Grants admin panel access.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
