package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "portfolio/internal/errors"
	"portfolio/internal/middleware"
	"portfolio/internal/models"
	"portfolio/internal/pagination"
	"portfolio/internal/services"
	"portfolio/internal/validator"
)

const (
	testTenant = "tenant-test"
	testActor  = "00000000-0000-7000-8000-0000000000aa"
	testAsset  = "00000000-0000-7000-8000-000000000001"
)

// --- mock asset service ---

type mockAssetService struct {
	createAssetFn       func(ctx context.Context, tenantID, actorID, assetType string, value decimal.Decimal, currency string) (*models.Asset, error)
	updateAssetFn       func(ctx context.Context, tenantID, actorID, assetID string, assetType *string, value *decimal.Decimal, currency *string) (*models.Asset, error)
	getAssetByIDFn      func(ctx context.Context, tenantID, assetID string) (*models.Asset, error)
	deleteAssetFn       func(ctx context.Context, tenantID, actorID, assetID string) error
	searchAssetsFn      func(ctx context.Context, tenantID string, page pagination.PageRequest, filter services.AssetFilter) (*pagination.PageResponse[services.AssetResponse], error)
	addForecastFn       func(ctx context.Context, tenantID, actorID, assetID, assetType string, predictionDate time.Time, predictedValue, confidenceLevel decimal.Decimal) (*models.Forecast, error)
	updateForecastFn    func(ctx context.Context, tenantID, actorID, assetID, forecastID string, assetType *string, predictedValue *decimal.Decimal, predictionDate *time.Time, confidenceLevel *decimal.Decimal) (*models.Forecast, error)
	removeForecastFn    func(ctx context.Context, tenantID, actorID, assetID, forecastID string) error
	getAssetForecastsFn func(ctx context.Context, tenantID, assetID string, page pagination.PageRequest) (*pagination.PageResponse[models.Forecast], error)
}

func (m *mockAssetService) CreateAsset(ctx context.Context, tenantID, actorID, assetType string, value decimal.Decimal, currency string) (*models.Asset, error) {
	if m.createAssetFn != nil {
		return m.createAssetFn(ctx, tenantID, actorID, assetType, value, currency)
	}
	return &models.Asset{}, nil
}

func (m *mockAssetService) UpdateAsset(ctx context.Context, tenantID, actorID, assetID string, assetType *string, value *decimal.Decimal, currency *string) (*models.Asset, error) {
	if m.updateAssetFn != nil {
		return m.updateAssetFn(ctx, tenantID, actorID, assetID, assetType, value, currency)
	}
	return &models.Asset{}, nil
}

func (m *mockAssetService) GetAssetByID(ctx context.Context, tenantID, assetID string) (*models.Asset, error) {
	if m.getAssetByIDFn != nil {
		return m.getAssetByIDFn(ctx, tenantID, assetID)
	}
	return &models.Asset{}, nil
}

func (m *mockAssetService) DeleteAsset(ctx context.Context, tenantID, actorID, assetID string) error {
	if m.deleteAssetFn != nil {
		return m.deleteAssetFn(ctx, tenantID, actorID, assetID)
	}
	return nil
}

func (m *mockAssetService) SearchAssets(ctx context.Context, tenantID string, page pagination.PageRequest, filter services.AssetFilter) (*pagination.PageResponse[services.AssetResponse], error) {
	if m.searchAssetsFn != nil {
		return m.searchAssetsFn(ctx, tenantID, page, filter)
	}
	resp := pagination.NewPageResponse([]services.AssetResponse{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockAssetService) AddForecast(ctx context.Context, tenantID, actorID, assetID, assetType string, predictionDate time.Time, predictedValue, confidenceLevel decimal.Decimal) (*models.Forecast, error) {
	if m.addForecastFn != nil {
		return m.addForecastFn(ctx, tenantID, actorID, assetID, assetType, predictionDate, predictedValue, confidenceLevel)
	}
	return &models.Forecast{}, nil
}

func (m *mockAssetService) UpdateForecast(ctx context.Context, tenantID, actorID, assetID, forecastID string, assetType *string, predictedValue *decimal.Decimal, predictionDate *time.Time, confidenceLevel *decimal.Decimal) (*models.Forecast, error) {
	if m.updateForecastFn != nil {
		return m.updateForecastFn(ctx, tenantID, actorID, assetID, forecastID, assetType, predictedValue, predictionDate, confidenceLevel)
	}
	return &models.Forecast{}, nil
}

func (m *mockAssetService) RemoveForecast(ctx context.Context, tenantID, actorID, assetID, forecastID string) error {
	if m.removeForecastFn != nil {
		return m.removeForecastFn(ctx, tenantID, actorID, assetID, forecastID)
	}
	return nil
}

func (m *mockAssetService) GetAssetForecasts(ctx context.Context, tenantID, assetID string, page pagination.PageRequest) (*pagination.PageResponse[models.Forecast], error) {
	if m.getAssetForecastsFn != nil {
		return m.getAssetForecastsFn(ctx, tenantID, assetID, page)
	}
	resp := pagination.NewPageResponse([]models.Forecast{}, 1, 20, 0)
	return &resp, nil
}

// verify interface compliance
var _ services.AssetServicer = (*mockAssetService)(nil)

// --- shared helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectScope(tenantID, actorID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextTenantID, tenantID)
		c.Set(middleware.ContextActorID, actorID)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func setupAssetRouter(handler *AssetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectScope(testTenant, testActor))
	auth.POST("/assets", handler.CreateAsset)
	auth.POST("/assets/search", handler.SearchAssets)
	auth.GET("/assets/:id", handler.GetAsset)
	auth.PUT("/assets/:id", handler.UpdateAsset)
	auth.DELETE("/assets/:id", handler.DeleteAsset)
	return r
}

// --- tests ---

func TestAssetHandler_CreateAsset(t *testing.T) {
	t.Run("returns 200 with id on success", func(t *testing.T) {
		svc := &mockAssetService{
			createAssetFn: func(_ context.Context, tenantID, actorID, assetType string, value decimal.Decimal, currency string) (*models.Asset, error) {
				if tenantID != testTenant || actorID != testActor {
					t.Errorf("unexpected scope %s/%s", tenantID, actorID)
				}
				asset := &models.Asset{Type: assetType, Value: value, Currency: currency}
				asset.ID = testAsset
				return asset, nil
			},
		}
		r := setupAssetRouter(NewAssetHandler(svc))

		rec := doRequest(r, "POST", "/assets", `{"type":"Stocks","value":1500.5,"currency":"EUR"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["id"] != testAsset {
			t.Errorf("expected id %s, got %v", testAsset, result["id"])
		}
	})

	t.Run("returns 400 when value missing", func(t *testing.T) {
		r := setupAssetRouter(NewAssetHandler(&mockAssetService{}))

		rec := doRequest(r, "POST", "/assets", `{"type":"Stocks"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 for negative value", func(t *testing.T) {
		r := setupAssetRouter(NewAssetHandler(&mockAssetService{}))

		rec := doRequest(r, "POST", "/assets", `{"value":-10}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 400 for malformed currency", func(t *testing.T) {
		r := setupAssetRouter(NewAssetHandler(&mockAssetService{}))

		rec := doRequest(r, "POST", "/assets", `{"value":100,"currency":"US1"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 401 without auth scope", func(t *testing.T) {
		r := gin.New()
		r.POST("/assets", NewAssetHandler(&mockAssetService{}).CreateAsset)

		rec := doRequest(r, "POST", "/assets", `{"value":100}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestAssetHandler_UpdateAsset(t *testing.T) {
	t.Run("returns 200 with id on success", func(t *testing.T) {
		var gotValue *decimal.Decimal
		svc := &mockAssetService{
			updateAssetFn: func(_ context.Context, _, _, assetID string, assetType *string, value *decimal.Decimal, currency *string) (*models.Asset, error) {
				if assetType != nil || currency != nil {
					t.Error("expected omitted fields to arrive as nil")
				}
				gotValue = value
				asset := &models.Asset{}
				asset.ID = assetID
				return asset, nil
			},
		}
		r := setupAssetRouter(NewAssetHandler(svc))

		rec := doRequest(r, "PUT", "/assets/"+testAsset, `{"value":2000}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotValue == nil || !gotValue.Equal(decimal.NewFromInt(2000)) {
			t.Errorf("expected value pointer 2000, got %v", gotValue)
		}
		result := parseJSON(t, rec)
		if result["id"] != testAsset {
			t.Errorf("expected id %s, got %v", testAsset, result["id"])
		}
	})

	t.Run("returns 400 for invalid asset id", func(t *testing.T) {
		r := setupAssetRouter(NewAssetHandler(&mockAssetService{}))

		rec := doRequest(r, "PUT", "/assets/not-a-uuid", `{"value":2000}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 404 when service reports missing asset", func(t *testing.T) {
		svc := &mockAssetService{
			updateAssetFn: func(_ context.Context, _, _, _ string, _ *string, _ *decimal.Decimal, _ *string) (*models.Asset, error) {
				return nil, apperrors.ErrAssetNotFound
			},
		}
		r := setupAssetRouter(NewAssetHandler(svc))

		rec := doRequest(r, "PUT", "/assets/"+testAsset, `{"value":2000}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "ASSET_NOT_FOUND")
	})
}

func TestAssetHandler_GetAsset(t *testing.T) {
	t.Run("returns 200 with asset", func(t *testing.T) {
		svc := &mockAssetService{
			getAssetByIDFn: func(_ context.Context, _, assetID string) (*models.Asset, error) {
				asset := &models.Asset{Type: "Gold", Value: decimal.NewFromInt(900), Currency: "USD"}
				asset.ID = assetID
				return asset, nil
			},
		}
		r := setupAssetRouter(NewAssetHandler(svc))

		rec := doRequest(r, "GET", "/assets/"+testAsset, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		asset := result["asset"].(map[string]interface{})
		if asset["type"] != "Gold" {
			t.Errorf("expected type Gold, got %v", asset["type"])
		}
	})

	t.Run("returns 404 for unknown asset", func(t *testing.T) {
		svc := &mockAssetService{
			getAssetByIDFn: func(_ context.Context, _, _ string) (*models.Asset, error) {
				return nil, apperrors.ErrAssetNotFound
			},
		}
		r := setupAssetRouter(NewAssetHandler(svc))

		rec := doRequest(r, "GET", "/assets/"+testAsset, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestAssetHandler_DeleteAsset(t *testing.T) {
	t.Run("returns 204 on success", func(t *testing.T) {
		called := false
		svc := &mockAssetService{
			deleteAssetFn: func(_ context.Context, _, _, _ string) error {
				called = true
				return nil
			},
		}
		r := setupAssetRouter(NewAssetHandler(svc))

		rec := doRequest(r, "DELETE", "/assets/"+testAsset, "")

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
		}
		if !called {
			t.Error("expected delete to be forwarded to the service")
		}
	})

	t.Run("returns 404 for unknown asset", func(t *testing.T) {
		svc := &mockAssetService{
			deleteAssetFn: func(_ context.Context, _, _, _ string) error {
				return apperrors.ErrAssetNotFound
			},
		}
		r := setupAssetRouter(NewAssetHandler(svc))

		rec := doRequest(r, "DELETE", "/assets/"+testAsset, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestAssetHandler_SearchAssets(t *testing.T) {
	t.Run("returns 200 with page", func(t *testing.T) {
		svc := &mockAssetService{
			searchAssetsFn: func(_ context.Context, _ string, page pagination.PageRequest, filter services.AssetFilter) (*pagination.PageResponse[services.AssetResponse], error) {
				if page.Page != 2 || page.PageSize != 5 {
					t.Errorf("unexpected page request %+v", page)
				}
				if filter.AssetType != "Stocks" || filter.OrderBy != "value" {
					t.Errorf("unexpected filter %+v", filter)
				}
				resp := pagination.NewPageResponse([]services.AssetResponse{
					{ID: testAsset, Type: "Stocks", Value: decimal.NewFromInt(100), Currency: "USD"},
				}, page.Page, page.PageSize, 6)
				return &resp, nil
			},
		}
		r := setupAssetRouter(NewAssetHandler(svc))

		rec := doRequest(r, "POST", "/assets/search",
			`{"page":2,"page_size":5,"asset_type":"Stocks","order_by":"value"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["total_items"].(float64) != 6 {
			t.Errorf("expected 6 total items, got %v", result["total_items"])
		}
		if len(result["data"].([]interface{})) != 1 {
			t.Errorf("expected 1 item, got %v", result["data"])
		}
	})

	t.Run("returns 400 for unknown order column", func(t *testing.T) {
		r := setupAssetRouter(NewAssetHandler(&mockAssetService{}))

		rec := doRequest(r, "POST", "/assets/search", `{"order_by":"created_by"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 400 for oversized page_size", func(t *testing.T) {
		r := setupAssetRouter(NewAssetHandler(&mockAssetService{}))

		rec := doRequest(r, "POST", "/assets/search", `{"page_size":500}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}
