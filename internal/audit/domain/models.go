package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Actor types recorded on an audit entry.
const (
	ActorTypeUser   = "user"
	ActorTypeSystem = "system"
)

// AuditLog is an append-only record of a mutating operation.
type AuditLog struct {
	ID snowflake.ID `gorm:"primaryKey" json:"id"`

	ActorType string  `gorm:"not null" json:"actor_type"`
	ActorName *string `json:"actor_name,omitempty"`

	Action     string  `gorm:"not null;index" json:"action"`
	TargetType string  `gorm:"not null;index" json:"target_type"`
	TargetID   *string `json:"target_id,omitempty"`

	Metadata datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`

	IPAddress *string `json:"ip_address,omitempty"`
	UserAgent *string `json:"user_agent,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

// AuditCursor is the keyset position for audit listing.
type AuditCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

// ListFilter narrows an audit listing.
type ListFilter struct {
	Action     string
	TargetType string
	TargetID   string
	ActorType  string
	StartAt    *time.Time
	EndAt      *time.Time
	Cursor     *AuditCursor
	Limit      int
}
