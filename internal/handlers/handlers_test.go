package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"points-market/internal/auth"
	"points-market/internal/config"
	"points-market/internal/models"
	"points-market/internal/services"
)

const testDSN = "file:handlertest?mode=memory&cache=shared&_txlock=immediate&_busy_timeout=5000"

type testApp struct {
	router *gin.Engine
	db     *gorm.DB
}

// setupApp wires the full route table the way cmd/main.go does.
func setupApp(t *testing.T, cfg *config.Config) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(testDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Market{}, &models.Purchase{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	db.Exec("DELETE FROM purchases")
	db.Exec("DELETE FROM markets")
	db.Exec("DELETE FROM users")

	sessions := auth.NewSessionStore(cfg.App.SessionTTL)
	authService := services.NewAuthService(db, sessions, cfg)
	marketService := services.NewMarketService(db)
	tradeService := services.NewTradeService(db)

	var adminPolicy auth.AdminPolicy
	if cfg.Auth.AdminPolicy == config.AdminPolicySecret {
		adminPolicy = auth.NewSharedKeyPolicy(cfg.Auth.AdminKey)
	} else {
		adminPolicy = auth.NewFlagPolicy(db)
	}

	authHandler := NewAuthHandler(authService)
	marketHandler := NewMarketHandler(marketService)
	tradeHandler := NewTradeHandler(tradeService)

	router := gin.New()
	router.Use(auth.ResolveCaller(sessions))

	router.POST("/register", authHandler.Register)
	router.POST("/login", authHandler.Login)
	router.GET("/logout", authHandler.Logout)
	router.GET("/api/markets", marketHandler.GetMarkets)
	router.GET("/api/markets/:id", marketHandler.GetMarketByID)
	router.GET("/api/me", auth.RequireAuth(), authHandler.GetMe)
	router.POST("/buy", tradeHandler.Buy)

	admin := router.Group("/", auth.RequireAdmin(adminPolicy))
	{
		admin.POST("/api/markets", marketHandler.CreateMarket)
		admin.PUT("/api/markets/:id", marketHandler.UpdateMarket)
		admin.DELETE("/api/markets/:id", marketHandler.DeleteMarket)
		admin.POST("/create_market", marketHandler.CreateMarketForm)
		admin.POST("/add", marketHandler.CreateMarketForm)
		admin.GET("/delete/:id", marketHandler.DeleteMarketForm)
	}

	return &testApp{router: router, db: db}
}

func defaultConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{DefaultPoints: 100, SessionTTL: time.Hour},
		Auth: config.AuthConfig{
			CredentialPolicy: config.CredentialPassword,
			AdminPolicy:      config.AdminPolicyFlag,
		},
	}
}

func (a *testApp) doJSON(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) register(t *testing.T, email string) string {
	t.Helper()
	w := a.doJSON(http.MethodPost, "/register", "", gin.H{
		"email":    email,
		"password": "pw",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register %s: status %d: %s", email, w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp.Token
}

func (a *testApp) promote(t *testing.T, email string) {
	t.Helper()
	if err := a.db.Model(&models.User{}).Where("email = ?", email).
		Update("is_admin", true).Error; err != nil {
		t.Fatalf("failed to promote %s: %v", email, err)
	}
}

func TestRegisterAndDuplicate(t *testing.T) {
	app := setupApp(t, defaultConfig())

	w := app.doJSON(http.MethodPost, "/register", "", gin.H{
		"email": "a@example.com", "password": "pw", "username": "a",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register: status %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Points  int  `json:"points"`
			IsAdmin bool `json:"is_admin"`
		} `json:"user"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Token == "" {
		t.Error("register returned no token")
	}
	if resp.User.Points != 100 || resp.User.IsAdmin {
		t.Errorf("unexpected user summary: %+v", resp.User)
	}

	w = app.doJSON(http.MethodPost, "/register", "", gin.H{
		"email": "a@example.com", "password": "pw",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate register: status %d, want 400", w.Code)
	}
}

func TestLoginStatusCodes(t *testing.T) {
	app := setupApp(t, defaultConfig())
	app.register(t, "b@example.com")

	w := app.doJSON(http.MethodPost, "/login", "", gin.H{
		"email": "b@example.com", "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password: status %d, want 401", w.Code)
	}

	w = app.doJSON(http.MethodPost, "/login", "", gin.H{
		"email": "missing@example.com", "password": "pw",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown identity: status %d, want 404", w.Code)
	}
}

func TestBuyRequiresSession(t *testing.T) {
	app := setupApp(t, defaultConfig())

	w := app.doJSON(http.MethodPost, "/buy", "", gin.H{
		"market_id": 1, "outcome": "yes", "amount": 10,
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous buy: status %d, want 401", w.Code)
	}
}

func TestBuyFlow(t *testing.T) {
	app := setupApp(t, defaultConfig())

	adminToken := app.register(t, "admin@example.com")
	app.promote(t, "admin@example.com")

	w := app.doJSON(http.MethodPost, "/api/markets", adminToken, gin.H{
		"question": "Will it happen?", "category": "misc",
		"yes_price": 50.0, "no_price": 51.0,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create market: status %d: %s", w.Code, w.Body.String())
	}
	var market models.Market
	json.Unmarshal(w.Body.Bytes(), &market)

	traderToken := app.register(t, "trader@example.com")

	w = app.doJSON(http.MethodPost, "/buy", traderToken, gin.H{
		"market_id": market.ID, "outcome": "yes", "amount": 30,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("buy: status %d: %s", w.Code, w.Body.String())
	}

	var result struct {
		Points   int     `json:"points"`
		YesPrice float64 `json:"yes_price"`
		NoPrice  float64 `json:"no_price"`
	}
	json.Unmarshal(w.Body.Bytes(), &result)
	if result.Points != 70 {
		t.Errorf("expected 70 points, got %d", result.Points)
	}
	if result.NoPrice != 51.0 {
		t.Errorf("no price moved: %v", result.NoPrice)
	}

	// Over-spending is a 400
	w = app.doJSON(http.MethodPost, "/buy", traderToken, gin.H{
		"market_id": market.ID, "outcome": "no", "amount": 500,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("overspend: status %d, want 400", w.Code)
	}

	// Unknown market is a 404
	w = app.doJSON(http.MethodPost, "/buy", traderToken, gin.H{
		"market_id": 9999, "outcome": "no", "amount": 5,
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown market: status %d, want 404", w.Code)
	}
}

func TestBuyAcceptsFormEncoding(t *testing.T) {
	app := setupApp(t, defaultConfig())

	adminToken := app.register(t, "admin@example.com")
	app.promote(t, "admin@example.com")
	w := app.doJSON(http.MethodPost, "/api/markets", adminToken, gin.H{
		"question": "Form buy?", "yes_price": 60.0, "no_price": 60.0,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create market: status %d", w.Code)
	}
	var market models.Market
	json.Unmarshal(w.Body.Bytes(), &market)

	token := app.register(t, "formtrader@example.com")

	form := url.Values{}
	form.Set("market_id", fmt.Sprint(market.ID))
	form.Set("outcome", "no")
	form.Set("amount", "10")

	req := httptest.NewRequest(http.MethodPost, "/buy", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("form buy: status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAdminGateWithFlagPolicy(t *testing.T) {
	app := setupApp(t, defaultConfig())

	token := app.register(t, "pleb@example.com")

	w := app.doJSON(http.MethodPost, "/api/markets", token, gin.H{
		"question": "Nope?", "yes_price": 60.0, "no_price": 60.0,
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("non-admin create: status %d, want 403", w.Code)
	}

	w = app.doJSON(http.MethodPost, "/api/markets", "", gin.H{
		"question": "Nope?", "yes_price": 60.0, "no_price": 60.0,
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("anonymous create: status %d, want 403", w.Code)
	}
}

func TestSharedKeyPolicyDelete(t *testing.T) {
	cfg := defaultConfig()
	cfg.Auth.AdminPolicy = config.AdminPolicySecret
	cfg.Auth.AdminKey = "pierogiadmin"
	app := setupApp(t, cfg)

	market := models.Market{Question: "Shared key?", YesPrice: 55, NoPrice: 55}
	app.db.Create(&market)

	w := app.doJSON(http.MethodGet, fmt.Sprintf("/delete/%d", market.ID), "", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("delete without key: status %d, want 403", w.Code)
	}

	w = app.doJSON(http.MethodGet, fmt.Sprintf("/delete/%d?key=pierogiadmin", market.ID), "", nil)
	if w.Code != http.StatusFound {
		t.Errorf("delete with key: status %d, want 302", w.Code)
	}

	var count int64
	app.db.Model(&models.Market{}).Count(&count)
	if count != 0 {
		t.Errorf("market not deleted")
	}
}

func TestMarketUpdateAndDeleteCodes(t *testing.T) {
	app := setupApp(t, defaultConfig())

	adminToken := app.register(t, "admin@example.com")
	app.promote(t, "admin@example.com")

	w := app.doJSON(http.MethodPost, "/api/markets", adminToken, gin.H{
		"question": "Update me?", "yes_price": 60.0, "no_price": 60.0,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create market: status %d", w.Code)
	}
	var market models.Market
	json.Unmarshal(w.Body.Bytes(), &market)

	// Spread violation on the resulting pair
	w = app.doJSON(http.MethodPut, fmt.Sprintf("/api/markets/%d", market.ID), adminToken, gin.H{
		"yes_price": 30.0,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("spread-violating update: status %d, want 400", w.Code)
	}

	w = app.doJSON(http.MethodDelete, "/api/markets/9999", adminToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("delete missing: status %d, want 404", w.Code)
	}

	w = app.doJSON(http.MethodDelete, fmt.Sprintf("/api/markets/%d", market.ID), adminToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete: status %d, want 200", w.Code)
	}
}

func TestMeEndpoint(t *testing.T) {
	app := setupApp(t, defaultConfig())
	token := app.register(t, "me@example.com")

	w := app.doJSON(http.MethodGet, "/api/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: status %d", w.Code)
	}

	var resp struct {
		User struct {
			Email  string `json:"email"`
			Points int    `json:"points"`
		} `json:"user"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.User.Email != "me@example.com" || resp.User.Points != 100 {
		t.Errorf("unexpected profile: %+v", resp.User)
	}

	w = app.doJSON(http.MethodGet, "/api/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous me: status %d, want 401", w.Code)
	}
}
