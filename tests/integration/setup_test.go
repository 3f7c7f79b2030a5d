package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"portfolio/internal/events"
	"portfolio/internal/handlers"
	"portfolio/internal/logger"
	"portfolio/internal/middleware"
	"portfolio/internal/models"
	"portfolio/internal/services"
	"portfolio/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

// allPermissions grants every asset permission; tests that exercise the
// permission checks issue narrower tokens themselves.
var allPermissions = []string{
	middleware.PermAssetsCreate,
	middleware.PermAssetsView,
	middleware.PermAssetsUpdate,
	middleware.PermAssetsDelete,
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.Asset{},
		&models.Forecast{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	dispatcher := events.Multi{events.NewLogDispatcher(), events.NewAuditDispatcher(db)}
	assetService := services.NewAssetService(db, dispatcher)

	assetHandler := handlers.NewAssetHandler(assetService)
	forecastHandler := handlers.NewForecastHandler(assetService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware())

	assets := v1.Group("/assets")
	assets.POST("", middleware.RequirePermission(middleware.PermAssetsCreate), assetHandler.CreateAsset)
	assets.POST("/search", middleware.RequirePermission(middleware.PermAssetsView), assetHandler.SearchAssets)
	assets.GET("/:id", middleware.RequirePermission(middleware.PermAssetsView), assetHandler.GetAsset)
	assets.PUT("/:id", middleware.RequirePermission(middleware.PermAssetsUpdate), assetHandler.UpdateAsset)
	assets.DELETE("/:id", middleware.RequirePermission(middleware.PermAssetsDelete), assetHandler.DeleteAsset)

	assets.POST("/:id/forecasts", middleware.RequirePermission(middleware.PermAssetsUpdate), forecastHandler.AddForecast)
	assets.GET("/:id/forecasts", middleware.RequirePermission(middleware.PermAssetsView), forecastHandler.GetAssetForecasts)
	assets.PUT("/:id/forecasts/:forecastId", middleware.RequirePermission(middleware.PermAssetsUpdate), forecastHandler.UpdateForecast)
	assets.DELETE("/:id/forecasts/:forecastId", middleware.RequirePermission(middleware.PermAssetsUpdate), forecastHandler.RemoveForecast)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// tokenFor signs a token for the given tenant with the given permissions.
func tokenFor(t *testing.T, tenantID, actorID string, permissions []string) string {
	t.Helper()
	token, err := middleware.GenerateToken(tenantID, actorID, permissions)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

// createAsset creates an asset over HTTP and returns its id.
func (app *testApp) createAsset(t *testing.T, token, body string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/assets", body, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("create asset failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	id, _ := result["id"].(string)
	if id == "" {
		t.Fatalf("create asset returned no id: %v", result)
	}
	return id
}
