package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bonchon-studio/statusrental/internal/config"
	"github.com/bonchon-studio/statusrental/internal/ledger"
	"github.com/bonchon-studio/statusrental/internal/models"
	"github.com/bonchon-studio/statusrental/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const testJWTSecret = "admin-surface-test-secret"

func setupAdminRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:admin_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	if errIndex := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_packages_name_duration ON packages(name, duration_days)",
	).Error; errIndex != nil {
		t.Fatalf("create package index: %v", errIndex)
	}

	cfg := &config.Config{JWT: config.JWTConfig{Secret: testJWTSecret, ExpiryHours: 1}}
	r := gin.New()
	RegisterAdminRoutes(r, db, cfg, ledger.New(db))
	return r, db
}

func createAccount(t *testing.T, db *gorm.DB, discordID string, isAdmin bool, balance int64) models.User {
	t.Helper()
	user := models.User{DiscordID: discordID, Username: "u" + discordID, Balance: balance, IsAdmin: isAdmin}
	if errCreate := db.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	return user
}

func adminRequest(t *testing.T, user models.User, method, path string, payload any) *http.Request {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	token, errToken := security.GenerateToken(testJWTSecret, user.ID, user.DiscordID, user.Username, user.IsAdmin, time.Hour)
	if errToken != nil {
		t.Fatalf("generate token: %v", errToken)
	}
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	return req
}

func TestAdminSurfaceRejectsNonAdmins(t *testing.T) {
	r, db := setupAdminRouter(t)
	user := createAccount(t, db, "1", false, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest(t, user, http.MethodGet, "/api/admin/stats", nil))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", w.Code)
	}

	// No session at all answers 401.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", w.Code)
	}
}

func TestAdminSetBalanceRecordsAdjustment(t *testing.T) {
	r, db := setupAdminRouter(t)
	admin := createAccount(t, db, "1", true, 0)
	target := createAccount(t, db, "2", false, 150)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest(t, admin, http.MethodPut,
		fmt.Sprintf("/api/admin/users/%d/balance", target.ID), gin.H{"balance": 100}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"delta":-50`) {
		t.Fatalf("expected signed delta in response: %s", w.Body.String())
	}

	var audit models.Transaction
	if errFind := db.Where("user_id = ? AND type = ?", target.ID, models.TransactionAdjustment).First(&audit).Error; errFind != nil {
		t.Fatalf("find adjustment: %v", errFind)
	}
	if audit.Amount != -50 || audit.BalanceAfter != 100 {
		t.Fatalf("unexpected audit row %+v", audit)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest(t, admin, http.MethodPut, "/api/admin/users/9999/balance", gin.H{"balance": 10}))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", w.Code)
	}
}

func TestAdminPackageCreateRejectsDuplicateOffer(t *testing.T) {
	r, db := setupAdminRouter(t)
	admin := createAccount(t, db, "1", true, 0)

	payload := gin.H{"name": "Gold", "duration_days": 30, "price": 300}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest(t, admin, http.MethodPost, "/api/admin/packages", payload))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest(t, admin, http.MethodPost, "/api/admin/packages", payload))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate offer, got %d: %s", w.Code, w.Body.String())
	}

	// Same name with a different duration is a distinct offer.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest(t, admin, http.MethodPost, "/api/admin/packages",
		gin.H{"name": "Gold", "duration_days": 90, "price": 800}))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for distinct duration, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminPackageToggleFlipsVisibility(t *testing.T) {
	r, db := setupAdminRouter(t)
	admin := createAccount(t, db, "1", true, 0)

	pkg := models.Package{Name: "Silver", DurationDays: 15, Price: 149, IsActive: true}
	if errCreate := db.Create(&pkg).Error; errCreate != nil {
		t.Fatalf("create package: %v", errCreate)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest(t, admin, http.MethodPut, fmt.Sprintf("/api/admin/packages/%d/toggle", pkg.ID), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var fresh models.Package
	if errFind := db.First(&fresh, pkg.ID).Error; errFind != nil {
		t.Fatalf("reload package: %v", errFind)
	}
	if fresh.IsActive {
		t.Fatal("toggle did not deactivate the package")
	}
}

func TestAdminTopupReviewLifecycle(t *testing.T) {
	r, db := setupAdminRouter(t)
	admin := createAccount(t, db, "1", true, 0)
	target := createAccount(t, db, "2", false, 0)

	led := ledger.New(db)
	pending, errSubmit := led.SubmitPending(context.Background(), target.ID, 200, "ref-1", "slip.png")
	if errSubmit != nil {
		t.Fatalf("submit pending: %v", errSubmit)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest(t, admin, http.MethodPost, fmt.Sprintf("/api/admin/topups/%d/approve", pending.ID), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"new_balance":200`) {
		t.Fatalf("unexpected approve body: %s", w.Body.String())
	}

	// A reviewed topup cannot be approved or rejected again.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest(t, admin, http.MethodPost, fmt.Sprintf("/api/admin/topups/%d/reject", pending.ID), nil))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for double review, got %d", w.Code)
	}
}

func TestAdminManualCredit(t *testing.T) {
	r, db := setupAdminRouter(t)
	admin := createAccount(t, db, "1", true, 0)
	target := createAccount(t, db, "2", false, 25)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest(t, admin, http.MethodPost, "/api/admin/topup",
		gin.H{"user_id": target.ID, "amount": 75}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"new_balance":100`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}

	var topup models.Topup
	if errFind := db.Where("user_id = ?", target.ID).First(&topup).Error; errFind != nil {
		t.Fatalf("find topup: %v", errFind)
	}
	if topup.Source != models.TopupSourceAdmin {
		t.Fatalf("expected admin source, got %q", topup.Source)
	}
}

func TestAdminUsersListIncludesActiveSubCount(t *testing.T) {
	r, db := setupAdminRouter(t)
	admin := createAccount(t, db, "1", true, 0)
	member := createAccount(t, db, "2", false, 0)

	pkg := models.Package{Name: "Gold", DurationDays: 30, Price: 300, IsActive: true}
	if errCreate := db.Create(&pkg).Error; errCreate != nil {
		t.Fatalf("create package: %v", errCreate)
	}
	sub := models.Subscription{UserID: member.ID, PackageID: pkg.ID, Status: models.SubscriptionActive, EndDate: time.Now().Add(time.Hour)}
	if errCreate := db.Create(&sub).Error; errCreate != nil {
		t.Fatalf("create subscription: %v", errCreate)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest(t, admin, http.MethodGet, "/api/admin/users", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Users []struct {
			ID         uint64 `json:"id"`
			ActiveSubs int64  `json:"active_subs"`
		} `json:"users"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode response: %v", errDecode)
	}
	if len(resp.Users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(resp.Users))
	}
	for _, u := range resp.Users {
		want := int64(0)
		if u.ID == member.ID {
			want = 1
		}
		if u.ActiveSubs != want {
			t.Fatalf("user %d: expected %d active subs, got %d", u.ID, want, u.ActiveSubs)
		}
	}
}
