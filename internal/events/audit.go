package events

import (
	"context"
	"encoding/json"

	"portfolio/internal/logger"
	"portfolio/internal/models"

	"gorm.io/gorm"
)

// AuditDispatcher persists each domain event as an audit log row. Failures
// are logged but never propagate; auditing must not disrupt the request
// that triggered it.
type AuditDispatcher struct {
	db *gorm.DB
}

// NewAuditDispatcher creates a new AuditDispatcher.
func NewAuditDispatcher(db *gorm.DB) *AuditDispatcher {
	return &AuditDispatcher{db: db}
}

// Dispatch writes one audit row per event.
func (d *AuditDispatcher) Dispatch(ctx context.Context, tenantID, actorID string, evts []models.DomainEvent) {
	for _, e := range evts {
		resourceType, resourceID, changes := describe(e)

		var changesJSON string
		if changes != nil {
			data, err := json.Marshal(changes)
			if err != nil {
				logger.Get().Errorw("failed to marshal audit changes", "error", err, "event", e.EventName())
			} else {
				changesJSON = string(data)
			}
		}

		entry := &models.AuditLog{
			AuditableBase: models.AuditableBase{TenantID: tenantID},
			ActorID:       actorID,
			Action:        e.EventName(),
			ResourceType:  resourceType,
			ResourceID:    resourceID,
			Changes:       changesJSON,
		}

		if err := d.db.WithContext(ctx).Create(entry).Error; err != nil {
			logger.Get().Errorw("failed to create audit log entry",
				"error", err,
				"tenant_id", tenantID,
				"actor_id", actorID,
				"event", e.EventName(),
			)
		}
	}
}

// describe extracts the audited resource and a change snapshot from an event.
func describe(e models.DomainEvent) (resourceType, resourceID string, changes map[string]any) {
	switch ev := e.(type) {
	case models.AssetCreated:
		return "asset", ev.Asset.ID, map[string]any{
			"type": ev.Asset.Type, "value": ev.Asset.Value, "currency": ev.Asset.Currency,
		}
	case models.AssetUpdated:
		return "asset", ev.Asset.ID, map[string]any{
			"type": ev.Asset.Type, "value": ev.Asset.Value, "currency": ev.Asset.Currency,
		}
	case models.ForecastAdded:
		return "forecast", ev.Forecast.ID, map[string]any{
			"asset_id": ev.AssetID, "predicted_value": ev.Forecast.PredictedValue,
		}
	case models.ForecastRemoved:
		return "forecast", ev.ForecastID, map[string]any{"asset_id": ev.AssetID}
	case models.ForecastCreated:
		return "forecast", ev.Forecast.ID, map[string]any{
			"asset_id": ev.Forecast.AssetID, "predicted_value": ev.Forecast.PredictedValue,
		}
	case models.ForecastUpdated:
		return "forecast", ev.Forecast.ID, map[string]any{
			"asset_id": ev.Forecast.AssetID, "predicted_value": ev.Forecast.PredictedValue,
			"confidence_level": ev.Forecast.ConfidenceLevel,
		}
	default:
		return "unknown", "", nil
	}
}
