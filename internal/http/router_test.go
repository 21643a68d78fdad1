package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/freakishcode/Blog-App/internal/auth"
	"github.com/freakishcode/Blog-App/internal/config"
	"github.com/freakishcode/Blog-App/internal/database"
	"github.com/freakishcode/Blog-App/internal/database/accounts"
	"github.com/freakishcode/Blog-App/internal/entities"
)

type discardNotifier struct{}

func (discardNotifier) SendVerification(email, token string) error { return nil }

func setupRouter(t *testing.T) (*gin.Engine, *auth.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Account{}))

	authCfg := config.Auth{BcryptCost: 10}
	service := auth.NewService(accounts.NewRepository(db), discardNotifier{}, authCfg)
	controller := auth.NewAuthController(service, authCfg)
	t.Cleanup(controller.Stop)

	router := NewRouter(RouterConfig{
		Database:       &database.Database{DB: db},
		AuthService:    service,
		AuthController: controller,
		AuthConfig:     authCfg,
		Version:        "test",
	})
	return router, service
}

func TestRouter_Ping(t *testing.T) {
	router, _ := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "pong"}`, w.Body.String())
}

func TestRouter_Health(t *testing.T) {
	router, _ := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "ok", health.Checks["database"])
	assert.Equal(t, "test", health.Version)
}

func TestRouter_Health_DatabaseDown(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	health := NewHealthController(&database.Database{DB: db}, "test")
	router := gin.New()
	router.GET("/health", health.Status)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_Me(t *testing.T) {
	router, service := setupRouter(t)

	// No token
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// With a live session
	account, err := service.Register("alice", "alice@x.com", "s3cret!")
	require.NoError(t, err)
	require.NoError(t, service.Verify(*account.VerificationToken))
	session, err := service.Login("alice", "s3cret!")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp auth.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "alice", resp.Username)
}
