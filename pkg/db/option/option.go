package option

import (
	"github.com/transnet/rms/pkg/db/pagination"
	"gorm.io/gorm"
)

// Option mutates a GORM statement before execution.
type Option interface {
	Apply(stmt *gorm.DB) *gorm.DB
}

type paginationOption struct {
	page pagination.Pagination
}

// ApplyPagination turns a page request into a cursor-windowed statement.
// The statement over-fetches by one row so callers can detect a next page.
func ApplyPagination(page pagination.Pagination) Option {
	return paginationOption{page: page}
}

func (o paginationOption) Apply(stmt *gorm.DB) *gorm.DB {
	size := o.page.PageSize
	if size <= 0 {
		size = 50
	}
	if size > 250 {
		size = 250
	}

	if token := o.page.PageToken; token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err == nil && cursor.ID != "" {
			stmt = stmt.Where("id < ?", cursor.ID)
		}
	}

	return stmt.Limit(size + 1)
}
