package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is applied when a caller does not supply a currency code.
const DefaultCurrency = "USD"

// Domain invariant violations. The service layer translates these into
// client-facing validation errors.
var (
	ErrEmptyAssetType       = errors.New("asset type must not be empty")
	ErrAssetTypeLength      = errors.New("asset type must be between 2 and 100 characters")
	ErrNonPositiveValue     = errors.New("asset value must be greater than zero")
	ErrCurrencyLength       = errors.New("currency code must be between 1 and 10 characters")
	ErrEmptyAssetID         = errors.New("forecast must reference an asset id")
	ErrConfidenceOutOfRange = errors.New("confidence level must be between 0 and 100")
)

// Asset is the aggregate root for a tracked financial holding. It owns its
// Forecasts collection and queues domain events on every mutation. All
// invariants (positive value, non-empty type and currency) are enforced by
// the aggregate itself rather than trusted to upstream validation.
type Asset struct {
	AuditableBase
	Type        string          `gorm:"type:varchar(100);not null" json:"type"`
	Value       decimal.Decimal `gorm:"type:numeric;not null" json:"value"`
	Currency    string          `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`
	LastUpdated time.Time       `gorm:"not null" json:"last_updated"`

	// Forecasts are owned by the asset; insertion order is significant for
	// display only. Removing the asset cascades to its forecasts.
	Forecasts []Forecast `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE" json:"forecasts,omitempty"`

	eventQueue `gorm:"-" json:"-"`
}

func validateAssetType(assetType string) error {
	if assetType == "" {
		return ErrEmptyAssetType
	}
	if len(assetType) < 2 || len(assetType) > 100 {
		return ErrAssetTypeLength
	}
	return nil
}

func validateCurrency(currency string) error {
	if len(currency) < 1 || len(currency) > 10 {
		return ErrCurrencyLength
	}
	return nil
}

// NewAsset constructs a new asset for the given tenant. Currency defaults
// to USD when empty. Queues an asset.created event.
func NewAsset(tenantID, assetType string, value decimal.Decimal, currency string) (*Asset, error) {
	if err := validateAssetType(assetType); err != nil {
		return nil, err
	}
	if !value.IsPositive() {
		return nil, ErrNonPositiveValue
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	if err := validateCurrency(currency); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	asset := &Asset{
		AuditableBase: AuditableBase{TenantID: tenantID},
		Type:          assetType,
		Value:         value,
		Currency:      currency,
		LastUpdated:   now,
	}
	asset.queue(AssetCreated{Asset: asset, At: now})
	return asset, nil
}

// ApplyUpdate applies only the supplied (non-nil) fields. A string field
// that differs from the current value only in case is left untouched.
// LastUpdated is refreshed and exactly one asset.updated event is queued
// regardless of how many fields actually changed.
func (a *Asset) ApplyUpdate(assetType *string, value *decimal.Decimal, currency *string) error {
	if assetType != nil && *assetType != "" {
		if err := validateAssetType(*assetType); err != nil {
			return err
		}
		if !strings.EqualFold(a.Type, *assetType) {
			a.Type = *assetType
		}
	}
	if value != nil {
		if !value.IsPositive() {
			return ErrNonPositiveValue
		}
		if !a.Value.Equal(*value) {
			a.Value = *value
		}
	}
	if currency != nil && *currency != "" {
		if err := validateCurrency(*currency); err != nil {
			return err
		}
		if !strings.EqualFold(a.Currency, *currency) {
			a.Currency = *currency
		}
	}

	now := time.Now().UTC()
	a.LastUpdated = now
	a.queue(AssetUpdated{Asset: a, At: now})
	return nil
}

// AddForecast constructs a forecast scoped to this asset, appends it to the
// collection, and queues a forecast.added event.
func (a *Asset) AddForecast(assetType string, predictionDate time.Time, predictedValue, confidenceLevel decimal.Decimal) (*Forecast, error) {
	forecast, err := NewForecast(a.TenantID, a.ID, assetType, predictionDate, predictedValue, confidenceLevel)
	if err != nil {
		return nil, err
	}
	a.Forecasts = append(a.Forecasts, *forecast)
	a.queue(ForecastAdded{AssetID: a.ID, Forecast: forecast, At: time.Now().UTC()})
	return forecast, nil
}

// RemoveForecast removes the matching forecast from the collection. When
// the id is not present this is a silent no-op and no event is queued.
// Reports whether a forecast was removed.
func (a *Asset) RemoveForecast(forecastID string) bool {
	for i := range a.Forecasts {
		if a.Forecasts[i].ID == forecastID {
			a.Forecasts = append(a.Forecasts[:i], a.Forecasts[i+1:]...)
			a.queue(ForecastRemoved{AssetID: a.ID, ForecastID: forecastID, At: time.Now().UTC()})
			return true
		}
	}
	return false
}
