package domain

import (
	"context"
	"errors"

	"github.com/transnet/rms/pkg/db/pagination"
)

type CreateTaskRequest struct {
	ServiceOrderID string `json:"service_order_id"`

	TaskType            string `json:"task_type"`
	ExecutionStatus     string `json:"execution_status,omitempty"`
	LifecycleStatus     string `json:"lifecycle_status,omitempty"`
	ExecutionDepartment string `json:"execution_department,omitempty"`
	Assignee            string `json:"assignee,omitempty"`

	SiteA     string `json:"site_a,omitempty"`
	SiteZ     string `json:"site_z,omitempty"`
	Bandwidth string `json:"bandwidth,omitempty"`
	CircuitID string `json:"circuit_id,omitempty"`

	ExtResource bool   `json:"ext_resource,omitempty"`
	ExtContract string `json:"ext_contract,omitempty"`
	ExtHandle   string `json:"ext_handle,omitempty"`

	ChangeTypes []string `json:"change_types,omitempty"`
	OldValue    string   `json:"old_value,omitempty"`
	NewValue    string   `json:"new_value,omitempty"`

	Feedback FeedbackInput `json:"feedback,omitempty"`

	Comments string `json:"comments,omitempty"`
}

type UpdateTaskRequest struct {
	ID string `json:"-"`
	CreateTaskRequest
}

type GetTaskRequest struct {
	ID string
}

type DeleteTaskRequest struct {
	ID string
}

type BulkDeleteTaskRequest struct {
	IDs []string `json:"ids"`
}

type BulkDeleteTaskResult struct {
	Deleted []string          `json:"deleted"`
	Failed  map[string]string `json:"failed,omitempty"`
}

type ListTaskRequest struct {
	PageToken string
	PageSize  int32

	ServiceOrderID    string
	TaskTypes         []string
	ExecutionStatuses []string
	LifecycleStatuses []string
	Departments       []string
	SiteA             string
	SiteZ             string
	CircuitID         string
	Query             string
}

type ListTaskResponse struct {
	pagination.PageInfo
	Tasks []TaskDetail `json:"task_details"`
}

type Service interface {
	Create(context.Context, CreateTaskRequest) (TaskDetail, error)
	Update(context.Context, UpdateTaskRequest) (TaskDetail, error)
	GetByID(context.Context, GetTaskRequest) (TaskDetail, error)
	// GetForm reverse-maps a stored task, feedback document included, back to
	// the flat inputs an edit form binds to.
	GetForm(context.Context, GetTaskRequest) (CreateTaskRequest, error)
	List(context.Context, ListTaskRequest) (ListTaskResponse, error)
	Delete(context.Context, DeleteTaskRequest) error
	BulkDelete(context.Context, BulkDeleteTaskRequest) (BulkDeleteTaskResult, error)
}

var (
	ErrInvalidID              = errors.New("invalid_id")
	ErrInvalidOrder           = errors.New("invalid_service_order")
	ErrInvalidTaskType        = errors.New("invalid_task_type")
	ErrInvalidExecutionStatus = errors.New("invalid_execution_status")
	ErrInvalidLifecycleStatus = errors.New("invalid_lifecycle_status")
	ErrNotFound               = errors.New("not_found")

	// Validation rule failures, surfaced field-scoped to the caller.
	ErrMissingParentOrder      = errors.New("missing_parent_order")
	ErrMissingExternalContract = errors.New("missing_external_contract")
)
