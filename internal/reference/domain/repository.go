package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/transnet/rms/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	InsertTenant(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	FindTenantByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tenant, error)
	ListTenants(ctx context.Context, db *gorm.DB, filter ListTenantFilter, page pagination.Pagination) ([]*Tenant, error)

	InsertSite(ctx context.Context, db *gorm.DB, site *Site) error
	FindSiteByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Site, error)
	ListSites(ctx context.Context, db *gorm.DB, filter ListSiteFilter, page pagination.Pagination) ([]*Site, error)
}
