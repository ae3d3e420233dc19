package domain

import (
	"context"
	"errors"

	"github.com/transnet/rms/pkg/db/pagination"
)

type CreateLedgerRequest struct {
	ServiceOrderID  string `json:"service_order_id"`
	ResourceType    string `json:"resource_type"`
	ResourceID      string `json:"resource_id"`
	ResourceName    string `json:"resource_name,omitempty"`
	LifecycleStatus string `json:"lifecycle_status,omitempty"`
	Snapshot        string `json:"snapshot,omitempty"`
	Comments        string `json:"comments,omitempty"`
}

type UpdateLedgerRequest struct {
	ID string `json:"-"`
	CreateLedgerRequest
}

type GetLedgerRequest struct {
	ID string
}

type DeleteLedgerRequest struct {
	ID string
}

type BulkDeleteLedgerRequest struct {
	IDs []string `json:"ids"`
}

type BulkDeleteLedgerResult struct {
	Deleted []string          `json:"deleted"`
	Failed  map[string]string `json:"failed,omitempty"`
}

type ListLedgerRequest struct {
	PageToken string
	PageSize  int32

	ServiceOrderID    string
	ResourceTypes     []string
	LifecycleStatuses []string
	ResourceID        string
	Query             string
}

type ListLedgerResponse struct {
	pagination.PageInfo
	Ledgers []ResourceLedger `json:"resource_ledgers"`
}

type Service interface {
	Create(context.Context, CreateLedgerRequest) (ResourceLedger, error)
	Update(context.Context, UpdateLedgerRequest) (ResourceLedger, error)
	GetByID(context.Context, GetLedgerRequest) (ResourceLedger, error)
	List(context.Context, ListLedgerRequest) (ListLedgerResponse, error)
	Delete(context.Context, DeleteLedgerRequest) error
	BulkDelete(context.Context, BulkDeleteLedgerRequest) (BulkDeleteLedgerResult, error)
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidOrder        = errors.New("invalid_service_order")
	ErrInvalidResourceType = errors.New("invalid_resource_type")
	ErrInvalidResourceID   = errors.New("invalid_resource_id")
	ErrInvalidSnapshot     = errors.New("invalid_snapshot")
	ErrDuplicateResource   = errors.New("duplicate_resource")
	ErrNotFound            = errors.New("not_found")
)
