package events

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"portfolio/internal/models"
	"portfolio/internal/testutil"
)

func TestAuditDispatcher(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	dispatcher := NewAuditDispatcher(db)
	ctx := context.Background()
	actor := testutil.NewActorID()

	t.Run("writes_one_row_per_event", func(t *testing.T) {
		tenant := "tenant-audit-rows"
		asset, err := models.NewAsset(tenant, "Stocks", decimal.NewFromInt(1000), "USD")
		if err != nil {
			t.Fatalf("failed to create asset: %v", err)
		}
		asset.ID = "00000000-0000-7000-8000-000000000010"

		events := asset.PendingEvents()
		asset.ClearEvents()
		if err := asset.ApplyUpdate(nil, nil, nil); err != nil {
			t.Fatalf("failed to update asset: %v", err)
		}
		events = append(events, asset.PendingEvents()...)

		dispatcher.Dispatch(ctx, tenant, actor, events)

		var logs []models.AuditLog
		if err := db.Scopes(models.TenantScope(tenant)).Order("created_at ASC").Find(&logs).Error; err != nil {
			t.Fatalf("failed to load audit logs: %v", err)
		}
		if len(logs) != 2 {
			t.Fatalf("expected 2 audit rows, got %d", len(logs))
		}

		if logs[0].Action != models.EventAssetCreated || logs[1].Action != models.EventAssetUpdated {
			t.Errorf("unexpected actions %s, %s", logs[0].Action, logs[1].Action)
		}
		for _, entry := range logs {
			if entry.ActorID != actor {
				t.Errorf("expected actor %s, got %s", actor, entry.ActorID)
			}
			if entry.ResourceType != "asset" || entry.ResourceID != asset.ID {
				t.Errorf("unexpected resource %s/%s", entry.ResourceType, entry.ResourceID)
			}
			if entry.Changes == "" {
				t.Error("expected a change snapshot")
			}
		}
	})

	t.Run("records_forecast_removal", func(t *testing.T) {
		tenant := "tenant-audit-removal"
		event := models.ForecastRemoved{
			AssetID:    "00000000-0000-7000-8000-000000000011",
			ForecastID: "00000000-0000-7000-8000-000000000012",
			At:         time.Now().UTC(),
		}

		dispatcher.Dispatch(ctx, tenant, actor, []models.DomainEvent{event})

		var entry models.AuditLog
		if err := db.Scopes(models.TenantScope(tenant)).First(&entry).Error; err != nil {
			t.Fatalf("failed to load audit log: %v", err)
		}
		if entry.Action != models.EventForecastRemoved {
			t.Errorf("expected action %s, got %s", models.EventForecastRemoved, entry.Action)
		}
		if entry.ResourceType != "forecast" || entry.ResourceID != event.ForecastID {
			t.Errorf("unexpected resource %s/%s", entry.ResourceType, entry.ResourceID)
		}
	})
}
