package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/transnet/rms/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListTaskFilter struct {
	ServiceOrderID    snowflake.ID
	TaskTypes         []string
	ExecutionStatuses []string
	LifecycleStatuses []string
	Departments       []string
	SiteA             string
	SiteZ             string
	CircuitID         string
	Query             string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, task *TaskDetail) error
	Update(ctx context.Context, db *gorm.DB, task *TaskDetail) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*TaskDetail, error)
	List(ctx context.Context, db *gorm.DB, filter ListTaskFilter, page pagination.Pagination) ([]*TaskDetail, error)

	// FirstByOrder returns the earliest task under an order in default id
	// order, or nil when the order has none.
	FirstByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*TaskDetail, error)

	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
