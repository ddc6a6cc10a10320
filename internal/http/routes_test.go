package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/riddleworks/dailyriddle/internal/config"
	"github.com/riddleworks/dailyriddle/internal/generator"
	"github.com/riddleworks/dailyriddle/internal/models"
	"github.com/riddleworks/dailyriddle/internal/quota"
	"github.com/riddleworks/dailyriddle/internal/riddle"
	"github.com/riddleworks/dailyriddle/internal/security"
	"github.com/riddleworks/dailyriddle/internal/settings"
	"github.com/riddleworks/dailyriddle/internal/store"
	"gorm.io/gorm"
)

type routeGenerator struct {
	calls int
}

func (g *routeGenerator) Generate(ctx context.Context) (generator.Riddle, error) {
	g.calls++
	return generator.Riddle{
		Question: fmt.Sprintf("scheduled question %d", g.calls),
		Answer:   fmt.Sprintf("scheduled answer %d", g.calls),
	}, nil
}

var testJWT = config.JWTConfig{Secret: "route-test-secret"}

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:routes_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.AutoMigrate(&models.Riddle{}, &models.User{}, &models.Setting{}); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}

	riddleStore := store.NewRiddleStore(db)
	service := riddle.NewService(riddleStore, quota.NewTracker(10), &routeGenerator{})

	router := gin.New()
	RegisterRoutes(router, db, riddleStore, service, nil, testJWT)
	return router, db
}

func seedAdmin(t *testing.T, db *gorm.DB, username, password string) {
	t.Helper()
	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	user := models.User{Username: username, PasswordHash: hash, IsAdmin: true}
	if errCreate := db.Create(&user).Error; errCreate != nil {
		t.Fatalf("seed admin: %v", errCreate)
	}
}

func login(t *testing.T, router *gin.Engine, username, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode login response: %v", errDecode)
	}
	if resp.Token == "" {
		t.Fatalf("expected a token")
	}
	return resp.Token
}

func TestHealthz(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router, db := setupRouter(t)
	seedAdmin(t, db, "admin", "correct-horse")

	body := `{"username":"admin","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/riddles/generate", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/admin/riddles/generate", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with garbage token, got %d", w.Code)
	}
}

func TestAdminRoutesRejectNonAdminToken(t *testing.T) {
	router, _ := setupRouter(t)

	token, errSign := security.SignToken(testJWT.Secret, 42, false)
	if errSign != nil {
		t.Fatalf("sign token: %v", errSign)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/admin/riddles/generate", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin token, got %d", w.Code)
	}
}

func TestAdminGenerateBypassesQuota(t *testing.T) {
	router, db := setupRouter(t)
	seedAdmin(t, db, "admin", "correct-horse")
	token := login(t, router, "admin", "correct-horse")

	// More generations than a single client's daily quota would allow.
	for i := 0; i < 12; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/riddles/generate", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201 on call %d, got %d body=%s", i+1, w.Code, w.Body.String())
		}
	}

	var count int64
	if errCount := db.Model(&models.Riddle{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count riddles: %v", errCount)
	}
	if count != 12 {
		t.Fatalf("expected 12 riddles, got %d", count)
	}
}

func TestAdminSettingsRoundTrip(t *testing.T) {
	router, db := setupRouter(t)
	seedAdmin(t, db, "admin", "correct-horse")
	token := login(t, router, "admin", "correct-horse")

	body := fmt.Sprintf(`{%q:"Answer in one word.",%q:7}`,
		settings.RiddlePromptKey, settings.DailyRiddleHourKey)
	req := httptest.NewRequest(http.MethodPut, "/api/admin/settings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("put settings: expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/settings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get settings: expected 200, got %d", w.Code)
	}
	var resp struct {
		Settings map[string]json.RawMessage `json:"settings"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode settings: %v", errDecode)
	}
	if string(resp.Settings[settings.RiddlePromptKey]) != `"Answer in one word."` {
		t.Fatalf("unexpected prompt setting: %s", resp.Settings[settings.RiddlePromptKey])
	}
	if string(resp.Settings[settings.DailyRiddleHourKey]) != "7" {
		t.Fatalf("unexpected hour setting: %s", resp.Settings[settings.DailyRiddleHourKey])
	}
}
