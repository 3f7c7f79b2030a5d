package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"portfolio/internal/models"
	"portfolio/internal/uuid"
)

// TestTenant is the tenant every fixture belongs to unless overridden.
const TestTenant = "tenant-test"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewActorID returns a fresh actor uuid for audit fields.
func NewActorID() string {
	return uuid.New()
}

// CreateTestAsset creates an asset for the test tenant.
func CreateTestAsset(t *testing.T, db *gorm.DB) *models.Asset {
	t.Helper()
	return CreateTestAssetForTenant(t, db, TestTenant)
}

// CreateTestAssetForTenant creates an asset with a unique type for the
// given tenant.
func CreateTestAssetForTenant(t *testing.T, db *gorm.DB, tenantID string) *models.Asset {
	t.Helper()

	asset := &models.Asset{
		AuditableBase: models.AuditableBase{TenantID: tenantID},
		Type:          fmt.Sprintf("Stocks %d", nextID()),
		Value:         decimal.NewFromInt(1000),
		Currency:      "USD",
		LastUpdated:   time.Now().UTC(),
	}
	if err := db.Create(asset).Error; err != nil {
		t.Fatalf("failed to create test asset: %v", err)
	}
	return asset
}

// CreateTestAssetWithType creates an asset with the given type for the
// test tenant.
func CreateTestAssetWithType(t *testing.T, db *gorm.DB, assetType string) *models.Asset {
	t.Helper()

	asset := &models.Asset{
		AuditableBase: models.AuditableBase{TenantID: TestTenant},
		Type:          assetType,
		Value:         decimal.NewFromInt(1000),
		Currency:      "USD",
		LastUpdated:   time.Now().UTC(),
	}
	if err := db.Create(asset).Error; err != nil {
		t.Fatalf("failed to create test asset: %v", err)
	}
	return asset
}

// CreateTestForecast creates a forecast for the given asset.
func CreateTestForecast(t *testing.T, db *gorm.DB, assetID string) *models.Forecast {
	t.Helper()

	forecast := &models.Forecast{
		AuditableBase:   models.AuditableBase{TenantID: TestTenant},
		AssetID:         assetID,
		AssetType:       "Stocks",
		PredictionDate:  time.Now().UTC().AddDate(0, 1, 0),
		PredictedValue:  decimal.NewFromInt(1200),
		ConfidenceLevel: decimal.NewFromInt(80),
	}
	if err := db.Create(forecast).Error; err != nil {
		t.Fatalf("failed to create test forecast: %v", err)
	}
	return forecast
}
