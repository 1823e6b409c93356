package models

import "time"

// StatusConfig is a user's display profile consumed by the Discord bot.
// One row per user, upserted on every save.
type StatusConfig struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;uniqueIndex"` // Owning user, one-to-one.

	Page1Text1 string `gorm:"type:text;not null;default:''"` // First page, first line.
	Page1Text2 string `gorm:"type:text;not null;default:''"` // First page, second line.
	Page1Text3 string `gorm:"type:text;not null;default:''"` // First page, third line.
	Page1Image string `gorm:"type:text;not null;default:''"` // First page image reference.
	Page2Text1 string `gorm:"type:text;not null;default:''"` // Second page, first line.
	Page2Text2 string `gorm:"type:text;not null;default:''"` // Second page, second line.
	Page2Text3 string `gorm:"type:text;not null;default:''"` // Second page, third line.
	Page2Image string `gorm:"type:text;not null;default:''"` // Second page image reference.

	IsEnabled    bool   `gorm:"not null"` // Whether the bot displays the profile. No column default so an explicit false survives the INSERT; writers set true themselves.
	DiscordToken string `gorm:"type:text"`             // User-provided access token, exposed only to the bot surface.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
