package models

import "time"

// Topup sources.
const (
	// TopupSourceDiscordBot marks a credit reported by the Discord bot.
	TopupSourceDiscordBot = "discord_bot"
	// TopupSourceAdmin marks a manual credit issued from the admin panel.
	TopupSourceAdmin = "admin"
	// TopupSourceWebsitePending marks a slip upload awaiting review.
	TopupSourceWebsitePending = "website_pending"
	// TopupSourceApproved marks a reviewed slip that credited the balance.
	TopupSourceApproved = "approved"
	// TopupSourceRejected marks a reviewed slip that was declined.
	TopupSourceRejected = "rejected"
)

// Topup is a requested or realized credit event.
//
// website_pending rows have no balance effect until an admin approves them;
// rejected rows are retained for audit.
type Topup struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"` // Owning user.

	Amount    int64  `gorm:"not null"`                 // Credit amount, positive.
	Reference string `gorm:"type:text"`                // External reference or slip label.
	Source    string `gorm:"type:text;not null;index"` // Origin and review state.
	SlipName  string `gorm:"type:text"`                // Attached slip file name, when uploaded.

	User *User `gorm:"foreignKey:UserID"` // Owning user record.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last review transition timestamp.
}
