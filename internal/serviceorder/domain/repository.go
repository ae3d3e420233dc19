package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/transnet/rms/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListOrderFilter struct {
	OrderNo              string
	SalesContact         string
	TenantID             snowflake.ID
	CheckTypes           []string
	ConfirmationStatuses []string
	HasParent            *bool
	ApplyDateAfter       *time.Time
	ApplyDateBefore      *time.Time
	Query                string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *ServiceOrder) error
	Update(ctx context.Context, db *gorm.DB, order *ServiceOrder) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ServiceOrder, error)
	List(ctx context.Context, db *gorm.DB, filter ListOrderFilter, page pagination.Pagination) ([]*ServiceOrder, error)

	// CountLedgerRefs reports how many ledger rows protect the order from
	// deletion.
	CountLedgerRefs(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (int64, error)

	// DeleteCascade removes the order together with its tasks and check
	// result inside the caller's transaction.
	DeleteCascade(ctx context.Context, tx *gorm.DB, orderID snowflake.ID) error
}
