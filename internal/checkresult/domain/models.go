package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	sodomain "github.com/transnet/rms/internal/serviceorder/domain"
	"gorm.io/datatypes"
)

// Check result values shared across categories.
const (
	ResultAvailable   = "available"
	ResultUnavailable = "unavailable"
	ResultNeedModule  = "need_module"
	ResultNeedCard    = "need_card"
)

// resultVocabulary holds the valid result values per category.
var resultVocabulary = map[sodomain.CheckType][]string{
	sodomain.CheckTypeTransmission: {ResultAvailable, ResultUnavailable, ResultNeedModule, ResultNeedCard},
	sodomain.CheckTypeFiber:        {ResultAvailable, ResultUnavailable},
	sodomain.CheckTypeColocation:   {ResultAvailable, ResultUnavailable},
}

// reasonVocabulary holds the valid unavailable-reason codes per category.
var reasonVocabulary = map[sodomain.CheckType][]string{
	sodomain.CheckTypeTransmission: {"wavelength", "module", "card", "protection"},
	sodomain.CheckTypeFiber:        {"fiber", "protection"},
	sodomain.CheckTypeColocation:   {"cabinet", "power", "space", "fiber"},
}

// ValidResult reports whether the result value belongs to the category's
// vocabulary.
func ValidResult(checkType sodomain.CheckType, result string) bool {
	for _, value := range resultVocabulary[checkType] {
		if value == result {
			return true
		}
	}
	return false
}

// ValidReason reports whether the reason code belongs to the category's
// vocabulary.
func ValidReason(checkType sodomain.CheckType, reason string) bool {
	for _, value := range reasonVocabulary[checkType] {
		if value == reason {
			return true
		}
	}
	return false
}

// ResourceCheckResult is the feasibility-check outcome tied one-to-one to a
// service order.
type ResourceCheckResult struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	ServiceOrderID snowflake.ID `gorm:"not null;uniqueIndex" json:"service_order_id"`

	CheckResult        string                      `gorm:"not null" json:"check_result"`
	UnavailableReasons datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"unavailable_reasons,omitempty"`
	Description        string                      `json:"description,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
