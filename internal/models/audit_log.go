package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog is append-only. ResourceType/ResourceID point at the affected row
// (assets, assignments or repairs) without owning it.
type AuditLog struct {
	ID            int64          `gorm:"primaryKey" json:"id"`
	UserID        int64          `gorm:"index" json:"user_id"`                  // 0 for system actions
	Action        string         `gorm:"size:100;index;not null" json:"action"` // e.g. "New Assignment", "Sent to Repair"
	ResourceType  string         `gorm:"size:50;index:idx_audit_resource;not null" json:"resource_type"`
	ResourceID    int64          `gorm:"index:idx_audit_resource" json:"resource_id"`
	Metadata      datatypes.JSON `gorm:"type:json" json:"metadata"` // action-specific payload
	IP            string         `gorm:"size:64" json:"ip"`
	InitiatorName string         `gorm:"size:255" json:"initiator_name"`
	UserAgent     string         `gorm:"size:255" json:"user_agent"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
}
