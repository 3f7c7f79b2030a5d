package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Forecast is a child entity owned by an Asset: an AI-generated prediction
// of the asset's value at a future point in time. It has no independent
// lifecycle; it is cascade-deleted with its owning asset.
type Forecast struct {
	AuditableBase
	AssetID         string          `gorm:"type:uuid;not null;index" json:"asset_id"`
	AssetType       string          `gorm:"type:varchar(100)" json:"asset_type,omitempty"`
	PredictionDate  time.Time       `gorm:"not null" json:"prediction_date"`
	PredictedValue  decimal.Decimal `gorm:"type:numeric;not null" json:"predicted_value"`
	ConfidenceLevel decimal.Decimal `gorm:"type:numeric;not null" json:"confidence_level"`

	eventQueue `gorm:"-" json:"-"`
}

var confidenceCeiling = decimal.NewFromInt(100)

func validateConfidence(confidenceLevel decimal.Decimal) error {
	if confidenceLevel.IsNegative() || confidenceLevel.GreaterThan(confidenceCeiling) {
		return ErrConfidenceOutOfRange
	}
	return nil
}

// NewForecast is the factory for forecasts tied to an existing asset id.
// Queues a forecast.created event.
func NewForecast(tenantID, assetID, assetType string, predictionDate time.Time, predictedValue, confidenceLevel decimal.Decimal) (*Forecast, error) {
	if assetID == "" {
		return nil, ErrEmptyAssetID
	}
	if err := validateConfidence(confidenceLevel); err != nil {
		return nil, err
	}

	forecast := &Forecast{
		AuditableBase:   AuditableBase{TenantID: tenantID},
		AssetID:         assetID,
		AssetType:       assetType,
		PredictionDate:  predictionDate,
		PredictedValue:  predictedValue,
		ConfidenceLevel: confidenceLevel,
	}
	forecast.queue(ForecastCreated{Forecast: forecast, At: time.Now().UTC()})
	return forecast, nil
}

// ApplyUpdate applies only the supplied (non-nil) fields, mirroring the
// asset's selective-update pattern. Queues exactly one forecast.updated
// event per call.
func (f *Forecast) ApplyUpdate(assetType *string, predictedValue *decimal.Decimal, predictionDate *time.Time, confidenceLevel *decimal.Decimal) error {
	if assetType != nil && *assetType != "" && !strings.EqualFold(f.AssetType, *assetType) {
		f.AssetType = *assetType
	}
	if predictedValue != nil && !f.PredictedValue.Equal(*predictedValue) {
		f.PredictedValue = *predictedValue
	}
	if predictionDate != nil && !f.PredictionDate.Equal(*predictionDate) {
		f.PredictionDate = *predictionDate
	}
	if confidenceLevel != nil {
		if err := validateConfidence(*confidenceLevel); err != nil {
			return err
		}
		if !f.ConfidenceLevel.Equal(*confidenceLevel) {
			f.ConfidenceLevel = *confidenceLevel
		}
	}
	f.queue(ForecastUpdated{Forecast: f, At: time.Now().UTC()})
	return nil
}
