package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Resource types a ledger row can record.
const (
	ResourceTypeCircuit       = "circuit"
	ResourceTypeHostingDevice = "hosting_device"
	ResourceTypeCable         = "cable"
)

// Lifecycle statuses.
const (
	LifecycleStatusActive     = "active"
	LifecycleStatusTerminated = "terminated"
)

// ValidResourceType reports whether the value is a known resource type.
func ValidResourceType(value string) bool {
	switch value {
	case ResourceTypeCircuit, ResourceTypeHostingDevice, ResourceTypeCable:
		return true
	default:
		return false
	}
}

// ResourceLedger is a durable record of a provisioned asset. The
// (resource_type, resource_id) pair is unique across the table, and a ledger
// row protects its source order from deletion.
type ResourceLedger struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	ServiceOrderID snowflake.ID `gorm:"not null;index" json:"service_order_id"`

	ResourceType string `gorm:"not null;uniqueIndex:idx_resource_type_id" json:"resource_type"`
	ResourceID   string `gorm:"not null;uniqueIndex:idx_resource_type_id" json:"resource_id"`
	ResourceName string `json:"resource_name,omitempty"`

	LifecycleStatus string `gorm:"not null;default:active" json:"lifecycle_status"`

	Snapshot datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"snapshot,omitempty"`

	Comments  string    `json:"comments,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
