package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/transnet/rms/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListLedgerFilter struct {
	ServiceOrderID    snowflake.ID
	ResourceTypes     []string
	LifecycleStatuses []string
	ResourceID        string
	Query             string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, ledger *ResourceLedger) error
	Update(ctx context.Context, db *gorm.DB, ledger *ResourceLedger) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ResourceLedger, error)
	List(ctx context.Context, db *gorm.DB, filter ListLedgerFilter, page pagination.Pagination) ([]*ResourceLedger, error)
	ListByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]*ResourceLedger, error)

	// TerminateByOrder flips every ledger row under the order to the
	// terminated lifecycle status, returning the number of rows touched.
	TerminateByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (int64, error)

	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
