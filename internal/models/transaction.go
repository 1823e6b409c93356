package models

import "time"

// Transaction types.
const (
	// TransactionPurchase records a package purchase debit.
	TransactionPurchase = "purchase"
	// TransactionTopup records a balance credit.
	TransactionTopup = "topup"
	// TransactionAdjustment records an admin balance overwrite.
	TransactionAdjustment = "adjustment"
)

// Transaction is an append-only audit record of a balance change.
//
// BalanceAfter snapshots the user's balance immediately after the associated
// mutation and is always written from the authoritative post-mutation value
// inside the same database transaction. Rows are never updated or deleted.
type Transaction struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"` // Owning user.

	Type         string  `gorm:"type:text;not null;index"` // purchase, topup or adjustment.
	Amount       int64   `gorm:"not null"`                 // Signed balance delta.
	Description  string  `gorm:"type:text"`                // Human-readable summary.
	BalanceAfter int64   `gorm:"not null"`                 // Balance snapshot after the mutation.
	ReferenceID  *uint64 `gorm:"index"`                    // Related topup or subscription row, if any.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
