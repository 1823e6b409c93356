package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bonchon-studio/statusrental/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:ledger_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.AutoMigrate(
		&models.User{}, &models.Package{}, &models.Subscription{},
		&models.Transaction{}, &models.Topup{},
	); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, balance int64) models.User {
	t.Helper()
	user := models.User{DiscordID: fmt.Sprintf("discord-%d", time.Now().UnixNano()), Username: "tester", Balance: balance}
	if errCreate := db.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	return user
}

func createPackage(t *testing.T, db *gorm.DB, name string, days int, price int64, active bool) models.Package {
	t.Helper()
	pkg := models.Package{Name: name, DurationDays: days, Price: price, IsActive: active}
	if errCreate := db.Create(&pkg).Error; errCreate != nil {
		t.Fatalf("create package: %v", errCreate)
	}
	return pkg
}

func TestPurchaseCreatesSubscriptionAndDebitsBalance(t *testing.T) {
	db := setupLedgerDB(t)
	led := New(db)

	user := createUser(t, db, 500)
	gold := createPackage(t, db, "Gold", 30, 300, true)

	before := time.Now().UTC()
	result, errPurchase := led.Purchase(context.Background(), user.ID, gold.ID)
	if errPurchase != nil {
		t.Fatalf("purchase: %v", errPurchase)
	}

	if result.NewBalance != 200 {
		t.Fatalf("expected balance 200, got %d", result.NewBalance)
	}
	if result.Extended {
		t.Fatalf("expected a new subscription, not an extension")
	}
	if result.Subscription.Status != models.SubscriptionActive {
		t.Fatalf("expected active subscription, got %s", result.Subscription.Status)
	}

	wantEnd := before.Add(30 * 24 * time.Hour)
	if diff := result.Subscription.EndDate.Sub(wantEnd); diff < -time.Minute || diff > time.Minute {
		t.Fatalf("expected end date near %s, got %s", wantEnd, result.Subscription.EndDate)
	}

	var stored models.User
	if errFind := db.First(&stored, user.ID).Error; errFind != nil {
		t.Fatalf("reload user: %v", errFind)
	}
	if stored.Balance != 200 {
		t.Fatalf("expected stored balance 200, got %d", stored.Balance)
	}

	var audits []models.Transaction
	if errFind := db.Where("user_id = ?", user.ID).Find(&audits).Error; errFind != nil {
		t.Fatalf("load transactions: %v", errFind)
	}
	if len(audits) != 1 {
		t.Fatalf("expected exactly one transaction row, got %d", len(audits))
	}
	audit := audits[0]
	if audit.Type != models.TransactionPurchase {
		t.Fatalf("expected purchase transaction, got %s", audit.Type)
	}
	if audit.Amount != -300 {
		t.Fatalf("expected amount -300, got %d", audit.Amount)
	}
	if audit.BalanceAfter != 200 {
		t.Fatalf("expected balance_after 200, got %d", audit.BalanceAfter)
	}
}

func TestPurchaseExtendsExistingSubscriptionAdditively(t *testing.T) {
	db := setupLedgerDB(t)
	led := New(db)

	user := createUser(t, db, 1000)
	gold := createPackage(t, db, "Gold", 30, 300, true)

	existingEnd := time.Now().UTC().Add(10 * 24 * time.Hour).Truncate(time.Second)
	sub := models.Subscription{UserID: user.ID, PackageID: gold.ID, Status: models.SubscriptionActive, EndDate: existingEnd}
	if errCreate := db.Create(&sub).Error; errCreate != nil {
		t.Fatalf("create subscription: %v", errCreate)
	}

	result, errPurchase := led.Purchase(context.Background(), user.ID, gold.ID)
	if errPurchase != nil {
		t.Fatalf("purchase: %v", errPurchase)
	}
	if !result.Extended {
		t.Fatalf("expected extension of the existing subscription")
	}

	// Extension is additive from the existing end date, never reset to now+30d.
	wantEnd := existingEnd.Add(30 * 24 * time.Hour)
	if !result.Subscription.EndDate.Equal(wantEnd) {
		t.Fatalf("expected end date %s, got %s", wantEnd, result.Subscription.EndDate)
	}

	var count int64
	if errCount := db.Model(&models.Subscription{}).Where("user_id = ?", user.ID).Count(&count).Error; errCount != nil {
		t.Fatalf("count subscriptions: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("expected a single subscription row, got %d", count)
	}
}

func TestPurchaseInsufficientBalanceLeavesNoTrace(t *testing.T) {
	db := setupLedgerDB(t)
	led := New(db)

	user := createUser(t, db, 200)
	gold := createPackage(t, db, "Gold", 30, 300, true)

	_, errPurchase := led.Purchase(context.Background(), user.ID, gold.ID)
	var insufficient *InsufficientBalanceError
	if !errors.As(errPurchase, &insufficient) {
		t.Fatalf("expected InsufficientBalanceError, got %v", errPurchase)
	}
	if insufficient.Required != 300 || insufficient.Current != 200 {
		t.Fatalf("expected required=300 current=200, got required=%d current=%d", insufficient.Required, insufficient.Current)
	}

	var stored models.User
	if errFind := db.First(&stored, user.ID).Error; errFind != nil {
		t.Fatalf("reload user: %v", errFind)
	}
	if stored.Balance != 200 {
		t.Fatalf("expected balance unchanged at 200, got %d", stored.Balance)
	}

	var subs, audits int64
	db.Model(&models.Subscription{}).Where("user_id = ?", user.ID).Count(&subs)
	db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&audits)
	if subs != 0 || audits != 0 {
		t.Fatalf("expected zero mutations, got %d subscriptions and %d transactions", subs, audits)
	}
}

func TestPurchaseRejectsInactiveOrMissingPackage(t *testing.T) {
	db := setupLedgerDB(t)
	led := New(db)

	user := createUser(t, db, 500)
	disabled := createPackage(t, db, "Hidden", 30, 100, false)

	if _, errPurchase := led.Purchase(context.Background(), user.ID, disabled.ID); !errors.Is(errPurchase, ErrPackageNotFound) {
		t.Fatalf("expected ErrPackageNotFound for inactive package, got %v", errPurchase)
	}
	if _, errPurchase := led.Purchase(context.Background(), user.ID, 9999); !errors.Is(errPurchase, ErrPackageNotFound) {
		t.Fatalf("expected ErrPackageNotFound for missing package, got %v", errPurchase)
	}
	if _, errPurchase := led.Purchase(context.Background(), 9999, disabled.ID); !errors.Is(errPurchase, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", errPurchase)
	}
}

func TestCreditIncreasesBalanceAndAppendsAudit(t *testing.T) {
	db := setupLedgerDB(t)
	led := New(db)

	user := createUser(t, db, 40)

	result, errCredit := led.Credit(context.Background(), user.ID, 60, "TRX-001", models.TopupSourceDiscordBot, "Topup via Discord bot")
	if errCredit != nil {
		t.Fatalf("credit: %v", errCredit)
	}
	if result.NewBalance != 100 {
		t.Fatalf("expected balance 100, got %d", result.NewBalance)
	}

	var topup models.Topup
	if errFind := db.First(&topup, result.TopupID).Error; errFind != nil {
		t.Fatalf("load topup: %v", errFind)
	}
	if topup.Source != models.TopupSourceDiscordBot || topup.Amount != 60 {
		t.Fatalf("unexpected topup row: source=%s amount=%d", topup.Source, topup.Amount)
	}

	var audit models.Transaction
	if errFind := db.Where("user_id = ?", user.ID).First(&audit).Error; errFind != nil {
		t.Fatalf("load transaction: %v", errFind)
	}
	if audit.Type != models.TransactionTopup || audit.Amount != 60 || audit.BalanceAfter != 100 {
		t.Fatalf("unexpected audit row: type=%s amount=%d balance_after=%d", audit.Type, audit.Amount, audit.BalanceAfter)
	}
	if audit.ReferenceID == nil || *audit.ReferenceID != topup.ID {
		t.Fatalf("expected audit to reference topup %d", topup.ID)
	}
}

func TestCreditRejectsNonPositiveAmount(t *testing.T) {
	db := setupLedgerDB(t)
	led := New(db)
	user := createUser(t, db, 0)

	for _, amount := range []int64{0, -5} {
		if _, errCredit := led.Credit(context.Background(), user.ID, amount, "x", models.TopupSourceAdmin, "x"); !errors.Is(errCredit, ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount for %d, got %v", amount, errCredit)
		}
	}
}

func TestAdjustRecordsTrueSignedDelta(t *testing.T) {
	db := setupLedgerDB(t)
	led := New(db)

	user := createUser(t, db, 150)

	result, errAdjust := led.Adjust(context.Background(), user.ID, 100)
	if errAdjust != nil {
		t.Fatalf("adjust: %v", errAdjust)
	}
	if result.OldBalance != 150 || result.NewBalance != 100 || result.Delta != -50 {
		t.Fatalf("unexpected result: old=%d new=%d delta=%d", result.OldBalance, result.NewBalance, result.Delta)
	}

	var audit models.Transaction
	if errFind := db.Where("user_id = ? AND type = ?", user.ID, models.TransactionAdjustment).First(&audit).Error; errFind != nil {
		t.Fatalf("load transaction: %v", errFind)
	}
	if audit.Amount != -50 {
		t.Fatalf("expected recorded delta -50, got %d", audit.Amount)
	}
	if audit.BalanceAfter != 100 {
		t.Fatalf("expected balance_after 100, got %d", audit.BalanceAfter)
	}
}

func TestPendingTopupLifecycle(t *testing.T) {
	db := setupLedgerDB(t)
	led := New(db)

	user := createUser(t, db, 0)

	topup, errSubmit := led.SubmitPending(context.Background(), user.ID, 50, "Pending slip #1", "slip_1.png")
	if errSubmit != nil {
		t.Fatalf("submit pending: %v", errSubmit)
	}

	// Submission alone never credits the balance.
	var stored models.User
	if errFind := db.First(&stored, user.ID).Error; errFind != nil {
		t.Fatalf("reload user: %v", errFind)
	}
	if stored.Balance != 0 {
		t.Fatalf("expected balance 0 before approval, got %d", stored.Balance)
	}

	result, errApprove := led.ApprovePending(context.Background(), topup.ID)
	if errApprove != nil {
		t.Fatalf("approve: %v", errApprove)
	}
	if result.NewBalance != 50 {
		t.Fatalf("expected balance 50 after approval, got %d", result.NewBalance)
	}

	var reviewed models.Topup
	if errFind := db.First(&reviewed, topup.ID).Error; errFind != nil {
		t.Fatalf("reload topup: %v", errFind)
	}
	if reviewed.Source != models.TopupSourceApproved {
		t.Fatalf("expected approved source, got %s", reviewed.Source)
	}

	if _, errAgain := led.ApprovePending(context.Background(), topup.ID); !errors.Is(errAgain, ErrTopupReviewed) {
		t.Fatalf("expected ErrTopupReviewed on double approval, got %v", errAgain)
	}
}

func TestRejectPendingKeepsBalanceAndRow(t *testing.T) {
	db := setupLedgerDB(t)
	led := New(db)

	user := createUser(t, db, 25)
	topup, errSubmit := led.SubmitPending(context.Background(), user.ID, 500, "Pending slip #2", "slip_2.png")
	if errSubmit != nil {
		t.Fatalf("submit pending: %v", errSubmit)
	}

	if errReject := led.RejectPending(context.Background(), topup.ID); errReject != nil {
		t.Fatalf("reject: %v", errReject)
	}

	var stored models.User
	if errFind := db.First(&stored, user.ID).Error; errFind != nil {
		t.Fatalf("reload user: %v", errFind)
	}
	if stored.Balance != 25 {
		t.Fatalf("expected balance unchanged at 25, got %d", stored.Balance)
	}

	var reviewed models.Topup
	if errFind := db.First(&reviewed, topup.ID).Error; errFind != nil {
		t.Fatalf("expected rejected row retained: %v", errFind)
	}
	if reviewed.Source != models.TopupSourceRejected {
		t.Fatalf("expected rejected source, got %s", reviewed.Source)
	}

	if errReject := led.RejectPending(context.Background(), topup.ID); !errors.Is(errReject, ErrTopupReviewed) {
		t.Fatalf("expected ErrTopupReviewed on double rejection, got %v", errReject)
	}
}

func TestPurchaseThenInsufficientSecondPurchase(t *testing.T) {
	db := setupLedgerDB(t)
	led := New(db)

	user := createUser(t, db, 500)
	gold := createPackage(t, db, "Gold", 30, 300, true)

	first, errFirst := led.Purchase(context.Background(), user.ID, gold.ID)
	if errFirst != nil {
		t.Fatalf("first purchase: %v", errFirst)
	}
	if first.NewBalance != 200 {
		t.Fatalf("expected balance 200 after first purchase, got %d", first.NewBalance)
	}

	_, errSecond := led.Purchase(context.Background(), user.ID, gold.ID)
	var insufficient *InsufficientBalanceError
	if !errors.As(errSecond, &insufficient) {
		t.Fatalf("expected InsufficientBalanceError, got %v", errSecond)
	}
	if insufficient.Required != 300 || insufficient.Current != 200 {
		t.Fatalf("expected required=300 current=200, got %+v", insufficient)
	}

	var audits int64
	db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&audits)
	if audits != 1 {
		t.Fatalf("expected only the first purchase recorded, got %d rows", audits)
	}
}
