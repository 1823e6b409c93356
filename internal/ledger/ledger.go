package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbutil "github.com/bonchon-studio/statusrental/internal/db"
	"github.com/bonchon-studio/statusrental/internal/models"
	"gorm.io/gorm"
)

// Ledger coordinates every balance-mutating operation. Each operation runs
// as a single database transaction with the user row locked for its
// duration, so two concurrent purchases cannot both pass the sufficiency
// check on a stale balance.
type Ledger struct {
	db *gorm.DB
}

// New constructs a Ledger over the given store handle.
func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// PurchaseResult reports the outcome of a package purchase.
type PurchaseResult struct {
	NewBalance   int64                // Balance after the debit.
	Subscription *models.Subscription // Created or extended subscription row.
	Extended     bool                 // True when an existing subscription was extended.
}

// Purchase debits the package price from the user's balance and extends the
// user's active subscription by the package duration, creating the
// subscription when none is active. The debit, the subscription write and
// the audit transaction commit as one unit.
func (l *Ledger) Purchase(ctx context.Context, userID, packageID uint64) (*PurchaseResult, error) {
	var result PurchaseResult

	errTx := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if errFind := dbutil.LockForUpdate(tx).First(&user, userID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return errFind
		}

		var pkg models.Package
		if errFind := tx.Where("id = ? AND is_active = ?", packageID, true).First(&pkg).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrPackageNotFound
			}
			return errFind
		}

		if user.Balance < pkg.Price {
			return &InsufficientBalanceError{Required: pkg.Price, Current: user.Balance}
		}

		now := time.Now().UTC()
		duration := time.Duration(pkg.DurationDays) * 24 * time.Hour

		var sub models.Subscription
		errActive := tx.Where("user_id = ? AND status = ? AND end_date > ?", user.ID, models.SubscriptionActive, now).
			Order("end_date DESC").
			First(&sub).Error
		switch {
		case errActive == nil:
			// Additive extension: remaining time is never shortened or reset.
			sub.EndDate = sub.EndDate.Add(duration)
			if errUpdate := tx.Model(&models.Subscription{}).Where("id = ?", sub.ID).
				Update("end_date", sub.EndDate).Error; errUpdate != nil {
				return errUpdate
			}
			result.Extended = true
		case errors.Is(errActive, gorm.ErrRecordNotFound):
			sub = models.Subscription{
				UserID:    user.ID,
				PackageID: pkg.ID,
				Status:    models.SubscriptionActive,
				EndDate:   now.Add(duration),
			}
			if errCreate := tx.Create(&sub).Error; errCreate != nil {
				return errCreate
			}
		default:
			return errActive
		}

		newBalance := user.Balance - pkg.Price
		if errDebit := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("balance", newBalance).Error; errDebit != nil {
			return errDebit
		}

		subID := sub.ID
		audit := models.Transaction{
			UserID:       user.ID,
			Type:         models.TransactionPurchase,
			Amount:       -pkg.Price,
			Description:  fmt.Sprintf("Purchased package %s (%d days)", pkg.Name, pkg.DurationDays),
			BalanceAfter: newBalance,
			ReferenceID:  &subID,
		}
		if errCreate := tx.Create(&audit).Error; errCreate != nil {
			return errCreate
		}

		result.NewBalance = newBalance
		result.Subscription = &sub
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return &result, nil
}

// CreditResult reports the outcome of a balance credit.
type CreditResult struct {
	NewBalance int64  // Balance after the credit.
	TopupID    uint64 // Recorded topup row.
}

// Credit records a realized topup and adds the amount to the user's
// balance. Used for bot-reported payments and admin manual topups; pending
// slip uploads go through SubmitPending instead.
func (l *Ledger) Credit(ctx context.Context, userID uint64, amount int64, reference, source, description string) (*CreditResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var result CreditResult
	errTx := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if errFind := dbutil.LockForUpdate(tx).First(&user, userID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return errFind
		}

		topup := models.Topup{
			UserID:    user.ID,
			Amount:    amount,
			Reference: reference,
			Source:    source,
		}
		if errCreate := tx.Create(&topup).Error; errCreate != nil {
			return errCreate
		}

		newBalance := user.Balance + amount
		if errUpdate := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("balance", newBalance).Error; errUpdate != nil {
			return errUpdate
		}

		topupID := topup.ID
		audit := models.Transaction{
			UserID:       user.ID,
			Type:         models.TransactionTopup,
			Amount:       amount,
			Description:  description,
			BalanceAfter: newBalance,
			ReferenceID:  &topupID,
		}
		if errCreate := tx.Create(&audit).Error; errCreate != nil {
			return errCreate
		}

		result.NewBalance = newBalance
		result.TopupID = topup.ID
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return &result, nil
}

// AdjustResult reports the outcome of an admin balance overwrite.
type AdjustResult struct {
	OldBalance int64 // Balance before the overwrite.
	NewBalance int64 // Balance after the overwrite.
	Delta      int64 // Signed difference recorded on the audit row.
}

// Adjust overwrites the user's balance and records an adjustment
// transaction carrying the true signed delta. The prior balance is captured
// under the row lock before the write.
func (l *Ledger) Adjust(ctx context.Context, userID uint64, newBalance int64) (*AdjustResult, error) {
	if newBalance < 0 {
		return nil, ErrInvalidAmount
	}

	var result AdjustResult
	errTx := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if errFind := dbutil.LockForUpdate(tx).First(&user, userID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return errFind
		}

		if errUpdate := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("balance", newBalance).Error; errUpdate != nil {
			return errUpdate
		}

		audit := models.Transaction{
			UserID:       user.ID,
			Type:         models.TransactionAdjustment,
			Amount:       newBalance - user.Balance,
			Description:  "Admin adjustment",
			BalanceAfter: newBalance,
		}
		if errCreate := tx.Create(&audit).Error; errCreate != nil {
			return errCreate
		}

		result.OldBalance = user.Balance
		result.NewBalance = newBalance
		result.Delta = newBalance - user.Balance
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return &result, nil
}

// SubmitPending records a slip-based topup request awaiting admin review.
// The balance is untouched until ApprovePending runs.
func (l *Ledger) SubmitPending(ctx context.Context, userID uint64, amount int64, reference, slipName string) (*models.Topup, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	topup := models.Topup{
		UserID:    userID,
		Amount:    amount,
		Reference: reference,
		Source:    models.TopupSourceWebsitePending,
		SlipName:  slipName,
	}
	errTx := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if errFind := tx.First(&user, userID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return errFind
		}
		return tx.Create(&topup).Error
	})
	if errTx != nil {
		return nil, errTx
	}
	return &topup, nil
}

// ApprovePending credits a pending slip topup and marks it approved. The
// credit and the review transition commit as one unit.
func (l *Ledger) ApprovePending(ctx context.Context, topupID uint64) (*CreditResult, error) {
	var result CreditResult
	errTx := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var topup models.Topup
		if errFind := dbutil.LockForUpdate(tx).First(&topup, topupID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrTopupNotFound
			}
			return errFind
		}
		if topup.Source != models.TopupSourceWebsitePending {
			return ErrTopupReviewed
		}

		var user models.User
		if errFind := dbutil.LockForUpdate(tx).First(&user, topup.UserID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return errFind
		}

		if errUpdate := tx.Model(&models.Topup{}).Where("id = ?", topup.ID).
			Update("source", models.TopupSourceApproved).Error; errUpdate != nil {
			return errUpdate
		}

		newBalance := user.Balance + topup.Amount
		if errUpdate := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("balance", newBalance).Error; errUpdate != nil {
			return errUpdate
		}

		refID := topup.ID
		audit := models.Transaction{
			UserID:       user.ID,
			Type:         models.TransactionTopup,
			Amount:       topup.Amount,
			Description:  fmt.Sprintf("Slip topup approved (%s)", topup.Reference),
			BalanceAfter: newBalance,
			ReferenceID:  &refID,
		}
		if errCreate := tx.Create(&audit).Error; errCreate != nil {
			return errCreate
		}

		result.NewBalance = newBalance
		result.TopupID = topup.ID
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return &result, nil
}

// RejectPending marks a pending slip topup rejected. The row is retained
// for audit and the balance is untouched.
func (l *Ledger) RejectPending(ctx context.Context, topupID uint64) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var topup models.Topup
		if errFind := dbutil.LockForUpdate(tx).First(&topup, topupID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrTopupNotFound
			}
			return errFind
		}
		if topup.Source != models.TopupSourceWebsitePending {
			return ErrTopupReviewed
		}
		return tx.Model(&models.Topup{}).Where("id = ?", topup.ID).
			Update("source", models.TopupSourceRejected).Error
	})
}
