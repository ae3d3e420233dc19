package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/transnet/rms/internal/reference/domain"
	"github.com/transnet/rms/pkg/db/option"
	"github.com/transnet/rms/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertTenant(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	return db.WithContext(ctx).Create(tenant).Error
}

func (r *repo) FindTenantByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := db.WithContext(ctx).
		Model(&domain.Tenant{}).
		Where("id = ?", id).
		Limit(1).
		Find(&tenant).Error
	if err != nil {
		return nil, err
	}
	if tenant.ID == 0 {
		return nil, nil
	}
	return &tenant, nil
}

func (r *repo) ListTenants(ctx context.Context, db *gorm.DB, filter domain.ListTenantFilter, page pagination.Pagination) ([]*domain.Tenant, error) {
	var tenants []*domain.Tenant
	stmt := db.WithContext(ctx).Model(&domain.Tenant{})
	if filter.Name != "" {
		stmt = stmt.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Slug != "" {
		stmt = stmt.Where("slug = ?", filter.Slug)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	if err := stmt.Order("id desc").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *repo) InsertSite(ctx context.Context, db *gorm.DB, site *domain.Site) error {
	return db.WithContext(ctx).Create(site).Error
}

func (r *repo) FindSiteByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Site, error) {
	var site domain.Site
	err := db.WithContext(ctx).
		Model(&domain.Site{}).
		Where("id = ?", id).
		Limit(1).
		Find(&site).Error
	if err != nil {
		return nil, err
	}
	if site.ID == 0 {
		return nil, nil
	}
	return &site, nil
}

func (r *repo) ListSites(ctx context.Context, db *gorm.DB, filter domain.ListSiteFilter, page pagination.Pagination) ([]*domain.Site, error) {
	var sites []*domain.Site
	stmt := db.WithContext(ctx).Model(&domain.Site{})
	if filter.Name != "" {
		stmt = stmt.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Slug != "" {
		stmt = stmt.Where("slug = ?", filter.Slug)
	}
	if filter.Region != "" {
		stmt = stmt.Where("region = ?", filter.Region)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	if err := stmt.Order("id desc").Find(&sites).Error; err != nil {
		return nil, err
	}
	return sites, nil
}
