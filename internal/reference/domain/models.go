package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Tenant is the customer a service order is placed for.
type Tenant struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"not null;uniqueIndex" json:"name"`
	Slug        string       `gorm:"not null;uniqueIndex" json:"slug"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Site is a network location referenced by check and feedback documents.
type Site struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"not null;uniqueIndex" json:"name"`
	Slug        string       `gorm:"not null;uniqueIndex" json:"slug"`
	Region      string       `json:"region,omitempty"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
