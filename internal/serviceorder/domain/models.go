package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// CheckType is the business-category discriminator shaping check_data.
type CheckType string

const (
	CheckTypeTransmission CheckType = "transmission"
	CheckTypeFiber        CheckType = "fiber"
	CheckTypeColocation   CheckType = "colocation"
)

// ValidCheckType reports whether the value is a known category. The empty
// string is accepted; orders without a feasibility check carry no category.
func ValidCheckType(value CheckType) bool {
	switch value {
	case "", CheckTypeTransmission, CheckTypeFiber, CheckTypeColocation:
		return true
	default:
		return false
	}
}

// Internal participants handling an order.
const (
	ParticipantMarketing = "marketing"
	ParticipantJiangxi   = "jiangxi"
	ParticipantZhejiang  = "zhejiang"
	ParticipantSichuan   = "sichuan"
)

// Confirmation statuses an order moves through after the feasibility check.
const (
	ConfirmationExecutionBilling = "execution_billing"
	ConfirmationExecutionTest    = "execution_test"
	ConfirmationCancel           = "cancel"
)

// Interface types carried inside transmission and fiber check documents.
const (
	InterfaceTypeOptical    = "optical"
	InterfaceTypeElectrical = "electrical"
)

// Bandwidth options carried inside check documents.
var BandwidthOptions = []string{"GE", "2.5G", "10G", "100G"}

// ServiceOrder is the top-level work order for a customer request.
type ServiceOrder struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderNo string       `gorm:"not null;uniqueIndex" json:"order_no"`

	TenantID   snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	TenantName string       `gorm:"-" json:"tenant_name,omitempty"`

	ProjectReportCode string `json:"project_report_code,omitempty"`
	ApprovalCode      string `json:"approval_code,omitempty"`
	ContractCode      string `json:"contract_code,omitempty"`

	SalesContact        string `json:"sales_contact,omitempty"`
	BusinessManager     string `json:"business_manager,omitempty"`
	InternalParticipant string `json:"internal_participant,omitempty"`

	ApplyDate        *datatypes.Date `json:"apply_date,omitempty"`
	DeadlineDate     *datatypes.Date `json:"deadline_date,omitempty"`
	BillingStartDate *datatypes.Date `json:"billing_start_date,omitempty"`

	ConfirmationStatus string `json:"confirmation_status,omitempty"`
	SpecialNotes       string `json:"special_notes,omitempty"`

	ParentOrderID *snowflake.ID `gorm:"index" json:"parent_order_id,omitempty"`

	CheckType CheckType      `gorm:"index" json:"check_type,omitempty"`
	CheckData datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"check_data,omitempty"`

	Comments  string    `json:"comments,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Display returns the order's display string, "order_no - tenant name" when
// the tenant is resolved.
func (o ServiceOrder) Display() string {
	if o.TenantName == "" {
		return o.OrderNo
	}
	return o.OrderNo + " - " + o.TenantName
}

// SafeCheckData decodes the stored check document, returning an empty map
// rather than nil for absent or malformed content.
func (o ServiceOrder) SafeCheckData() map[string]any {
	if len(o.CheckData) == 0 {
		return map[string]any{}
	}
	var data map[string]any
	if err := json.Unmarshal(o.CheckData, &data); err != nil || data == nil {
		return map[string]any{}
	}
	return data
}
