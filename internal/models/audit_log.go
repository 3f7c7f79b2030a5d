package models

// AuditLog records domain mutations per tenant for compliance. Rows are
// written by the audit event dispatcher after a successful save.
type AuditLog struct {
	AuditableBase
	ActorID      string `gorm:"type:uuid" json:"actor_id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   string `gorm:"type:uuid" json:"resource_id"`
	Changes      string `json:"changes,omitempty"`
}
