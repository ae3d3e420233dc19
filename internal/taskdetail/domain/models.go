package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Task types.
const (
	TaskTypeActivation   = "activation"
	TaskTypeChange       = "change"
	TaskTypeDeactivation = "deactivation"
)

// Execution statuses, in pipeline order.
const (
	ExecutionStatusPending    = "pending"
	ExecutionStatusPatched    = "patched"
	ExecutionStatusConfigured = "configured"
	ExecutionStatusConnected  = "connected"
)

// Lifecycle statuses.
const (
	LifecycleStatusActive     = "active"
	LifecycleStatusTerminated = "terminated"
)

// Execution departments.
const (
	DepartmentPipeline  = "pipeline"
	DepartmentOperation = "operation"
)

// Change types carried by change tasks.
const (
	ChangeTypeBandwidth  = "bandwidth"
	ChangeTypeToggle     = "toggle"
	ChangeTypeDirection  = "direction"
	ChangeTypeProtection = "protection"
	ChangeTypeHosting    = "hosting"
)

// External resource handling decisions.
const (
	ExtHandleClose    = "close"
	ExtHandleContinue = "continue"
	ExtHandleChange   = "change"
)

// Add methods recorded in transmission feedback.
const (
	AddMethodNew        = "new"
	AddMethodAllocation = "allocation"
	AddMethodOther      = "other"
)

// TaskDetail is one execution task under a service order.
type TaskDetail struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	ServiceOrderID snowflake.ID `gorm:"not null;index" json:"service_order_id"`

	TaskType            string `gorm:"not null;default:activation" json:"task_type"`
	ExecutionStatus     string `gorm:"not null;default:pending" json:"execution_status"`
	LifecycleStatus     string `gorm:"not null;default:active" json:"lifecycle_status"`
	ExecutionDepartment string `json:"execution_department,omitempty"`
	Assignee            string `json:"assignee,omitempty"`

	SiteA     string `json:"site_a,omitempty"`
	SiteZ     string `json:"site_z,omitempty"`
	Bandwidth string `json:"bandwidth,omitempty"`
	CircuitID string `json:"circuit_id,omitempty"`

	ExtResource bool   `json:"ext_resource,omitempty"`
	ExtContract string `json:"ext_contract,omitempty"`
	ExtHandle   string `json:"ext_handle,omitempty"`

	ChangeTypes    datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"change_types,omitempty"`
	OldValue       string                      `json:"old_value,omitempty"`
	NewValue       string                      `json:"new_value,omitempty"`
	PreviousValues string                      `json:"previous_values,omitempty"`

	FeedbackData datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"feedback_data,omitempty"`

	Comments  string    `json:"comments,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// HasChangeType reports whether the task carries the given change type.
func (t TaskDetail) HasChangeType(changeType string) bool {
	for _, value := range t.ChangeTypes {
		if value == changeType {
			return true
		}
	}
	return false
}

// SafeFeedbackData decodes the stored feedback document, returning an empty
// map rather than nil for absent or malformed content.
func (t TaskDetail) SafeFeedbackData() map[string]any {
	if len(t.FeedbackData) == 0 {
		return map[string]any{}
	}
	var data map[string]any
	if err := json.Unmarshal(t.FeedbackData, &data); err != nil || data == nil {
		return map[string]any{}
	}
	return data
}
