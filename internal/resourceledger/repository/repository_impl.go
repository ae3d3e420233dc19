package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/transnet/rms/internal/resourceledger/domain"
	"github.com/transnet/rms/pkg/db/option"
	"github.com/transnet/rms/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, ledger *domain.ResourceLedger) error {
	return db.WithContext(ctx).Create(ledger).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, ledger *domain.ResourceLedger) error {
	return db.WithContext(ctx).Save(ledger).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ResourceLedger, error) {
	var ledger domain.ResourceLedger
	err := db.WithContext(ctx).
		Model(&domain.ResourceLedger{}).
		Where("id = ?", id).
		Limit(1).
		Find(&ledger).Error
	if err != nil {
		return nil, err
	}
	if ledger.ID == 0 {
		return nil, nil
	}
	return &ledger, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListLedgerFilter, page pagination.Pagination) ([]*domain.ResourceLedger, error) {
	var ledgers []*domain.ResourceLedger
	stmt := db.WithContext(ctx).Model(&domain.ResourceLedger{})
	if filter.ServiceOrderID != 0 {
		stmt = stmt.Where("service_order_id = ?", filter.ServiceOrderID)
	}
	if len(filter.ResourceTypes) > 0 {
		stmt = stmt.Where("resource_type IN ?", filter.ResourceTypes)
	}
	if len(filter.LifecycleStatuses) > 0 {
		stmt = stmt.Where("lifecycle_status IN ?", filter.LifecycleStatuses)
	}
	if filter.ResourceID != "" {
		stmt = stmt.Where("resource_id LIKE ?", "%"+filter.ResourceID+"%")
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		stmt = stmt.Where(
			"resource_id LIKE ? OR resource_name LIKE ? OR comments LIKE ?",
			like, like, like,
		)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	if err := stmt.Order("id desc").Find(&ledgers).Error; err != nil {
		return nil, err
	}
	return ledgers, nil
}

func (r *repo) ListByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]*domain.ResourceLedger, error) {
	var ledgers []*domain.ResourceLedger
	err := db.WithContext(ctx).
		Model(&domain.ResourceLedger{}).
		Where("service_order_id = ?", orderID).
		Order("id asc").
		Find(&ledgers).Error
	if err != nil {
		return nil, err
	}
	return ledgers, nil
}

func (r *repo) TerminateByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.ResourceLedger{}).
		Where("service_order_id = ?", orderID).
		Where("lifecycle_status <> ?", domain.LifecycleStatusTerminated).
		Update("lifecycle_status", domain.LifecycleStatusTerminated)
	return result.RowsAffected, result.Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Exec(`DELETE FROM resource_ledgers WHERE id = ?`, id).Error
}
