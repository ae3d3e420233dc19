package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, result *ResourceCheckResult) error
	FindByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*ResourceCheckResult, error)
}

type GetCheckResultRequest struct {
	ServiceOrderID string
}

type PutCheckResultRequest struct {
	ServiceOrderID     string   `json:"-"`
	CheckResult        string   `json:"check_result"`
	UnavailableReasons []string `json:"unavailable_reasons,omitempty"`
	Description        string   `json:"description,omitempty"`
}

type Service interface {
	Get(context.Context, GetCheckResultRequest) (ResourceCheckResult, error)
	Put(context.Context, PutCheckResultRequest) (ResourceCheckResult, error)
}

var (
	ErrInvalidOrder     = errors.New("invalid_service_order")
	ErrInvalidCheckType = errors.New("invalid_check_type")
	ErrInvalidResult    = errors.New("invalid_check_result")
	ErrInvalidReason    = errors.New("invalid_unavailable_reason")
	ErrNotFound         = errors.New("not_found")
)
