package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting stores a single site configuration value.
type Setting struct {
	Key string `gorm:"primaryKey;type:text"` // Setting key.

	// No explicit column type: datatypes.JSON picks jsonb on postgres and
	// plain JSON text on sqlite, whose driver cannot scan a JSONB-declared
	// column.
	Value datatypes.JSON `gorm:"not null"` // JSON-encoded value.

	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
