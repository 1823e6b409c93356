// Package settings exposes database-backed site configuration through an
// atomically swapped in-memory snapshot. Handlers read the snapshot; admin
// writes update the row and refresh it.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/bonchon-studio/statusrental/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Setting keys and defaults.
const (
	// SiteNameKey is the key for the public site name.
	SiteNameKey = "SITE_NAME"
	// DefaultSiteName is the fallback public site name.
	DefaultSiteName = "OHM SHOP"
	// TopupMinAmountKey is the key for the minimum slip topup amount.
	TopupMinAmountKey = "TOPUP_MIN_AMOUNT"
	// DefaultTopupMinAmount is the fallback minimum slip topup amount.
	DefaultTopupMinAmount = int64(10)
)

// snapshot holds the in-memory settings values.
type snapshot struct {
	values map[string]json.RawMessage
}

var global atomic.Value // stores snapshot

func init() {
	global.Store(snapshot{values: map[string]json.RawMessage{}})
}

// Refresh reloads all settings rows and replaces the in-memory snapshot.
// Required at process startup; otherwise accessors return defaults until an
// admin write triggers a refresh.
func Refresh(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("settings: nil db")
	}

	var rows []models.Setting
	if errFind := db.WithContext(ctx).Find(&rows).Error; errFind != nil {
		return errFind
	}

	values := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		key := strings.TrimSpace(row.Key)
		if key == "" {
			continue
		}
		copied := make([]byte, len(row.Value))
		copy(copied, row.Value)
		values[key] = copied
	}
	global.Store(snapshot{values: values})
	return nil
}

// Set upserts one setting row and refreshes the snapshot.
func Set(ctx context.Context, db *gorm.DB, key string, value any) error {
	if db == nil {
		return errors.New("settings: nil db")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("settings: empty key")
	}

	encoded, errMarshal := json.Marshal(value)
	if errMarshal != nil {
		return errMarshal
	}
	// Update-then-insert instead of an ON CONFLICT upsert: the sqlite driver
	// cannot scan the JSON value column back through the upsert's RETURNING
	// clause.
	res := db.WithContext(ctx).Model(&models.Setting{}).
		Where("key = ?", key).
		Update("value", datatypes.JSON(encoded))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		row := models.Setting{Key: key, Value: datatypes.JSON(encoded)}
		if errCreate := db.WithContext(ctx).Create(&row).Error; errCreate != nil {
			return errCreate
		}
	}
	return Refresh(ctx, db)
}

// SiteName returns the configured public site name.
func SiteName() string {
	var name string
	if value(SiteNameKey, &name) && strings.TrimSpace(name) != "" {
		return name
	}
	return DefaultSiteName
}

// TopupMinAmount returns the minimum accepted slip topup amount.
func TopupMinAmount() int64 {
	var amount int64
	if value(TopupMinAmountKey, &amount) && amount > 0 {
		return amount
	}
	return DefaultTopupMinAmount
}

// value decodes the raw snapshot entry for key into out.
func value(key string, out any) bool {
	snap, ok := global.Load().(snapshot)
	if !ok {
		return false
	}
	raw, ok := snap.values[key]
	if !ok || raw == nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}
