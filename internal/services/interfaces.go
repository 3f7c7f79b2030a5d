package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"portfolio/internal/models"
	"portfolio/internal/pagination"
)

// AssetFilter holds optional filter and ordering parameters for searching
// assets.
type AssetFilter struct {
	AssetType string
	OrderBy   string
}

// AssetResponse is the projection returned by asset searches.
type AssetResponse struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

// AssetServicer defines the contract for asset and forecast business logic.
// Every method is tenant-scoped; a caller can never reach another tenant's
// rows. Optional update fields use pointers so "unset" is distinct from a
// zero value.
type AssetServicer interface {
	CreateAsset(ctx context.Context, tenantID, actorID, assetType string, value decimal.Decimal, currency string) (*models.Asset, error)
	UpdateAsset(ctx context.Context, tenantID, actorID, assetID string, assetType *string, value *decimal.Decimal, currency *string) (*models.Asset, error)
	GetAssetByID(ctx context.Context, tenantID, assetID string) (*models.Asset, error)
	DeleteAsset(ctx context.Context, tenantID, actorID, assetID string) error
	SearchAssets(ctx context.Context, tenantID string, page pagination.PageRequest, filter AssetFilter) (*pagination.PageResponse[AssetResponse], error)

	AddForecast(ctx context.Context, tenantID, actorID, assetID, assetType string, predictionDate time.Time, predictedValue, confidenceLevel decimal.Decimal) (*models.Forecast, error)
	UpdateForecast(ctx context.Context, tenantID, actorID, assetID, forecastID string, assetType *string, predictedValue *decimal.Decimal, predictionDate *time.Time, confidenceLevel *decimal.Decimal) (*models.Forecast, error)
	RemoveForecast(ctx context.Context, tenantID, actorID, assetID, forecastID string) error
	GetAssetForecasts(ctx context.Context, tenantID, assetID string, page pagination.PageRequest) (*pagination.PageResponse[models.Forecast], error)
}
