package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/transnet/rms/internal/serviceorder/domain"
	"github.com/transnet/rms/pkg/db/option"
	"github.com/transnet/rms/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.ServiceOrder) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, order *domain.ServiceOrder) error {
	return db.WithContext(ctx).Save(order).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ServiceOrder, error) {
	var order domain.ServiceOrder
	err := db.WithContext(ctx).
		Model(&domain.ServiceOrder{}).
		Where("id = ?", id).
		Limit(1).
		Find(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListOrderFilter, page pagination.Pagination) ([]*domain.ServiceOrder, error) {
	var orders []*domain.ServiceOrder
	stmt := db.WithContext(ctx).Model(&domain.ServiceOrder{})
	if filter.OrderNo != "" {
		stmt = stmt.Where("order_no LIKE ?", "%"+filter.OrderNo+"%")
	}
	if filter.SalesContact != "" {
		stmt = stmt.Where("sales_contact LIKE ?", "%"+filter.SalesContact+"%")
	}
	if filter.TenantID != 0 {
		stmt = stmt.Where("tenant_id = ?", filter.TenantID)
	}
	if len(filter.CheckTypes) > 0 {
		stmt = stmt.Where("check_type IN ?", filter.CheckTypes)
	}
	if len(filter.ConfirmationStatuses) > 0 {
		stmt = stmt.Where("confirmation_status IN ?", filter.ConfirmationStatuses)
	}
	if filter.HasParent != nil {
		if *filter.HasParent {
			stmt = stmt.Where("parent_order_id IS NOT NULL")
		} else {
			stmt = stmt.Where("parent_order_id IS NULL")
		}
	}
	if filter.ApplyDateAfter != nil {
		stmt = stmt.Where("apply_date >= ?", *filter.ApplyDateAfter)
	}
	if filter.ApplyDateBefore != nil {
		stmt = stmt.Where("apply_date <= ?", *filter.ApplyDateBefore)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		stmt = stmt.Where(
			"order_no LIKE ? OR sales_contact LIKE ? OR contract_code LIKE ? OR special_notes LIKE ?",
			like, like, like, like,
		)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	if err := stmt.Order("id desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) CountLedgerRefs(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Table("resource_ledgers").
		Where("service_order_id = ?", orderID).
		Count(&count).Error
	return count, err
}

func (r *repo) DeleteCascade(ctx context.Context, tx *gorm.DB, orderID snowflake.ID) error {
	// Child orders survive their parent; detach them instead of leaving a
	// dangling reference.
	if err := tx.WithContext(ctx).
		Exec(`UPDATE service_orders SET parent_order_id = NULL WHERE parent_order_id = ?`, orderID).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).
		Exec(`DELETE FROM task_details WHERE service_order_id = ?`, orderID).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).
		Exec(`DELETE FROM resource_check_results WHERE service_order_id = ?`, orderID).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).
		Exec(`DELETE FROM service_orders WHERE id = ?`, orderID).Error
}
