package models

import (
	"time"

	"portfolio/internal/uuid"

	"gorm.io/gorm"
)

// AuditableBase contains the common columns for every tenant-scoped table:
// a UUIDv7 primary key, tenant key, audit timestamps, actor identifiers,
// and a soft-delete marker.
type AuditableBase struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  string         `gorm:"type:varchar(64);not null;index" json:"tenant_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	CreatedBy string         `gorm:"type:uuid" json:"created_by,omitempty"`
	UpdatedBy string         `gorm:"type:uuid" json:"updated_by,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *AuditableBase) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}

// TenantScope returns a GORM scope restricting a query to a single tenant.
func TenantScope(tenantID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}
