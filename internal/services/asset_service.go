package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "portfolio/internal/errors"
	"portfolio/internal/events"
	"portfolio/internal/logger"
	"portfolio/internal/models"
	"portfolio/internal/pagination"
)

// DefaultAssetType is applied when a create request does not name a type.
const DefaultAssetType = "Cash"

// orderColumns whitelists the sortable search columns.
var orderColumns = map[string]string{
	"type":         "type",
	"value":        "value",
	"last_updated": "last_updated",
}

// assetService handles asset and forecast business logic.
type assetService struct {
	db         *gorm.DB
	dispatcher events.Dispatcher
}

// NewAssetService creates a new AssetServicer.
func NewAssetService(db *gorm.DB, dispatcher events.Dispatcher) AssetServicer {
	return &assetService{db: db, dispatcher: dispatcher}
}

// domainErr converts an aggregate invariant violation into a client-facing
// validation error.
func domainErr(err error) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

// dispatch drains the queued events of each source and delivers them.
// Called only after the unit of work has committed.
type eventSource interface {
	PendingEvents() []models.DomainEvent
	ClearEvents()
}

func (s *assetService) dispatch(ctx context.Context, tenantID, actorID string, sources ...eventSource) {
	for _, src := range sources {
		evts := src.PendingEvents()
		if len(evts) == 0 {
			continue
		}
		src.ClearEvents()
		s.dispatcher.Dispatch(ctx, tenantID, actorID, evts)
	}
}

// CreateAsset constructs and persists a new asset. The type defaults to
// "Cash" and the currency to "USD" when unspecified.
func (s *assetService) CreateAsset(ctx context.Context, tenantID, actorID, assetType string, value decimal.Decimal, currency string) (*models.Asset, error) {
	if assetType == "" {
		assetType = DefaultAssetType
	}

	asset, err := models.NewAsset(tenantID, assetType, value, currency)
	if err != nil {
		return nil, domainErr(err)
	}
	asset.CreatedBy = actorID

	if err := s.db.WithContext(ctx).Omit("Forecasts").Create(asset).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.dispatch(ctx, tenantID, actorID, asset)
	logger.Get().Infow("asset created", "asset_id", asset.ID, "tenant_id", tenantID)
	return asset, nil
}

// getAsset loads an asset within the tenant, optionally preloading its
// forecasts ordered by insertion.
func (s *assetService) getAsset(ctx context.Context, tenantID, assetID string, withForecasts bool) (*models.Asset, error) {
	q := s.db.WithContext(ctx).Scopes(models.TenantScope(tenantID))
	if withForecasts {
		q = q.Preload("Forecasts", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
	}

	var asset models.Asset
	if err := q.First(&asset, "id = ?", assetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAssetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &asset, nil
}

// UpdateAsset applies the supplied optional fields to an existing asset.
// A missing asset is a not-found condition and performs no persistence.
func (s *assetService) UpdateAsset(ctx context.Context, tenantID, actorID, assetID string, assetType *string, value *decimal.Decimal, currency *string) (*models.Asset, error) {
	asset, err := s.getAsset(ctx, tenantID, assetID, false)
	if err != nil {
		return nil, err
	}

	if err := asset.ApplyUpdate(assetType, value, currency); err != nil {
		return nil, domainErr(err)
	}
	asset.UpdatedBy = actorID

	if err := s.db.WithContext(ctx).Omit("Forecasts").Save(asset).Error; err != nil {
		asset.ClearEvents()
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.dispatch(ctx, tenantID, actorID, asset)
	logger.Get().Infow("asset updated", "asset_id", asset.ID, "tenant_id", tenantID)
	return asset, nil
}

// GetAssetByID returns an asset with its forecasts.
func (s *assetService) GetAssetByID(ctx context.Context, tenantID, assetID string) (*models.Asset, error) {
	return s.getAsset(ctx, tenantID, assetID, true)
}

// DeleteAsset soft-deletes an asset and its forecasts.
func (s *assetService) DeleteAsset(ctx context.Context, tenantID, actorID, assetID string) error {
	asset, err := s.getAsset(ctx, tenantID, assetID, false)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if txErr := tx.Where("asset_id = ?", asset.ID).Delete(&models.Forecast{}).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		if txErr := tx.Delete(asset).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Get().Infow("asset deleted", "asset_id", assetID, "tenant_id", tenantID)
	return nil
}

// SearchAssets returns a page of asset projections matching the filter.
// Results are ordered by type unless the filter names another column.
func (s *assetService) SearchAssets(ctx context.Context, tenantID string, page pagination.PageRequest, filter AssetFilter) (*pagination.PageResponse[AssetResponse], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Asset{}).Scopes(models.TenantScope(tenantID))
	if filter.AssetType != "" {
		base = base.Where("LOWER(type) = LOWER(?)", filter.AssetType)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	order := "type ASC"
	if col, ok := orderColumns[filter.OrderBy]; ok {
		order = col + " ASC"
	}

	var items []AssetResponse
	if err := base.Select("id", "type", "value", "currency").
		Order(order).
		Scopes(pagination.Paginate(page)).
		Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(items, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// AddForecast appends a forecast to an asset through the aggregate.
func (s *assetService) AddForecast(ctx context.Context, tenantID, actorID, assetID, assetType string, predictionDate time.Time, predictedValue, confidenceLevel decimal.Decimal) (*models.Forecast, error) {
	asset, err := s.getAsset(ctx, tenantID, assetID, true)
	if err != nil {
		return nil, err
	}

	forecast, err := asset.AddForecast(assetType, predictionDate, predictedValue, confidenceLevel)
	if err != nil {
		return nil, domainErr(err)
	}
	forecast.CreatedBy = actorID

	if err := s.db.WithContext(ctx).Create(forecast).Error; err != nil {
		asset.ClearEvents()
		forecast.ClearEvents()
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.dispatch(ctx, tenantID, actorID, forecast, asset)
	logger.Get().Infow("forecast added", "forecast_id", forecast.ID, "asset_id", assetID, "tenant_id", tenantID)
	return forecast, nil
}

// getForecast loads a forecast belonging to the given asset and tenant.
func (s *assetService) getForecast(ctx context.Context, tenantID, assetID, forecastID string) (*models.Forecast, error) {
	var forecast models.Forecast
	err := s.db.WithContext(ctx).Scopes(models.TenantScope(tenantID)).
		First(&forecast, "id = ? AND asset_id = ?", forecastID, assetID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrForecastNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &forecast, nil
}

// UpdateForecast applies the supplied optional fields to a forecast.
func (s *assetService) UpdateForecast(ctx context.Context, tenantID, actorID, assetID, forecastID string, assetType *string, predictedValue *decimal.Decimal, predictionDate *time.Time, confidenceLevel *decimal.Decimal) (*models.Forecast, error) {
	if _, err := s.getAsset(ctx, tenantID, assetID, false); err != nil {
		return nil, err
	}
	forecast, err := s.getForecast(ctx, tenantID, assetID, forecastID)
	if err != nil {
		return nil, err
	}

	if err := forecast.ApplyUpdate(assetType, predictedValue, predictionDate, confidenceLevel); err != nil {
		return nil, domainErr(err)
	}
	forecast.UpdatedBy = actorID

	if err := s.db.WithContext(ctx).Save(forecast).Error; err != nil {
		forecast.ClearEvents()
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.dispatch(ctx, tenantID, actorID, forecast)
	logger.Get().Infow("forecast updated", "forecast_id", forecastID, "asset_id", assetID, "tenant_id", tenantID)
	return forecast, nil
}

// RemoveForecast removes a forecast from its asset. A forecast id that is
// not in the collection is a silent no-op: no event, no error.
func (s *assetService) RemoveForecast(ctx context.Context, tenantID, actorID, assetID, forecastID string) error {
	asset, err := s.getAsset(ctx, tenantID, assetID, true)
	if err != nil {
		return err
	}

	if !asset.RemoveForecast(forecastID) {
		return nil
	}

	if err := s.db.WithContext(ctx).Where("id = ?", forecastID).Delete(&models.Forecast{}).Error; err != nil {
		asset.ClearEvents()
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.dispatch(ctx, tenantID, actorID, asset)
	logger.Get().Infow("forecast removed", "forecast_id", forecastID, "asset_id", assetID, "tenant_id", tenantID)
	return nil
}

// GetAssetForecasts returns a paginated list of an asset's forecasts in
// insertion order.
func (s *assetService) GetAssetForecasts(ctx context.Context, tenantID, assetID string, page pagination.PageRequest) (*pagination.PageResponse[models.Forecast], error) {
	if _, err := s.getAsset(ctx, tenantID, assetID, false); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Forecast{}).
		Scopes(models.TenantScope(tenantID)).
		Where("asset_id = ?", assetID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var forecasts []models.Forecast
	if err := base.Order("created_at ASC").Scopes(pagination.Paginate(page)).Find(&forecasts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(forecasts, page.Page, page.PageSize, totalItems)
	return &result, nil
}
