package domain

import (
	"context"
	"errors"

	"github.com/transnet/rms/pkg/db/pagination"
)

type CreateOrderRequest struct {
	OrderNo  string `json:"order_no"`
	TenantID string `json:"tenant_id"`

	ProjectReportCode string `json:"project_report_code,omitempty"`
	ApprovalCode      string `json:"approval_code,omitempty"`
	ContractCode      string `json:"contract_code,omitempty"`

	SalesContact        string `json:"sales_contact,omitempty"`
	BusinessManager     string `json:"business_manager,omitempty"`
	InternalParticipant string `json:"internal_participant,omitempty"`

	ApplyDate        string `json:"apply_date,omitempty"`
	DeadlineDate     string `json:"deadline_date,omitempty"`
	BillingStartDate string `json:"billing_start_date,omitempty"`

	ConfirmationStatus string `json:"confirmation_status,omitempty"`
	SpecialNotes       string `json:"special_notes,omitempty"`

	ParentOrderID string `json:"parent_order_id,omitempty"`

	CheckType string     `json:"check_type,omitempty"`
	Check     CheckInput `json:"check,omitempty"`

	Comments string `json:"comments,omitempty"`
}

type UpdateOrderRequest struct {
	ID string `json:"-"`
	CreateOrderRequest
}

type GetOrderRequest struct {
	ID string
}

type DeleteOrderRequest struct {
	ID string
}

type BulkDeleteOrderRequest struct {
	IDs []string `json:"ids"`
}

// BulkDeleteOrderResult carries per-item outcomes; bulk deletion is not
// transactional across items.
type BulkDeleteOrderResult struct {
	Deleted []string          `json:"deleted"`
	Failed  map[string]string `json:"failed,omitempty"`
}

type ListOrderRequest struct {
	PageToken string
	PageSize  int32

	OrderNo              string
	SalesContact         string
	TenantID             string
	CheckTypes           []string
	ConfirmationStatuses []string
	HasParent            *bool
	ApplyDateAfter       string
	ApplyDateBefore      string
	Query                string
}

type ListOrderResponse struct {
	pagination.PageInfo
	Orders []ServiceOrder `json:"service_orders"`
}

type Service interface {
	Create(context.Context, CreateOrderRequest) (ServiceOrder, error)
	Update(context.Context, UpdateOrderRequest) (ServiceOrder, error)
	GetByID(context.Context, GetOrderRequest) (ServiceOrder, error)
	// GetForm reverse-maps a stored order, check document included, back to
	// the flat inputs an edit form binds to.
	GetForm(context.Context, GetOrderRequest) (CreateOrderRequest, error)
	List(context.Context, ListOrderRequest) (ListOrderResponse, error)
	Delete(context.Context, DeleteOrderRequest) error
	BulkDelete(context.Context, BulkDeleteOrderRequest) (BulkDeleteOrderResult, error)
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidOrderNo     = errors.New("invalid_order_no")
	ErrInvalidTenant      = errors.New("invalid_tenant")
	ErrInvalidCheckType   = errors.New("invalid_check_type")
	ErrInvalidParentOrder = errors.New("invalid_parent_order")
	ErrInvalidDate        = errors.New("invalid_date")
	ErrDuplicateOrderNo   = errors.New("duplicate_order_no")
	ErrOrderReferenced    = errors.New("order_referenced")
	ErrNotFound           = errors.New("not_found")
)
