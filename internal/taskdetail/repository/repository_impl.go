package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/transnet/rms/internal/taskdetail/domain"
	"github.com/transnet/rms/pkg/db/option"
	"github.com/transnet/rms/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, task *domain.TaskDetail) error {
	return db.WithContext(ctx).Create(task).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, task *domain.TaskDetail) error {
	return db.WithContext(ctx).Save(task).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.TaskDetail, error) {
	var task domain.TaskDetail
	err := db.WithContext(ctx).
		Model(&domain.TaskDetail{}).
		Where("id = ?", id).
		Limit(1).
		Find(&task).Error
	if err != nil {
		return nil, err
	}
	if task.ID == 0 {
		return nil, nil
	}
	return &task, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListTaskFilter, page pagination.Pagination) ([]*domain.TaskDetail, error) {
	var tasks []*domain.TaskDetail
	stmt := db.WithContext(ctx).Model(&domain.TaskDetail{})
	if filter.ServiceOrderID != 0 {
		stmt = stmt.Where("service_order_id = ?", filter.ServiceOrderID)
	}
	if len(filter.TaskTypes) > 0 {
		stmt = stmt.Where("task_type IN ?", filter.TaskTypes)
	}
	if len(filter.ExecutionStatuses) > 0 {
		stmt = stmt.Where("execution_status IN ?", filter.ExecutionStatuses)
	}
	if len(filter.LifecycleStatuses) > 0 {
		stmt = stmt.Where("lifecycle_status IN ?", filter.LifecycleStatuses)
	}
	if len(filter.Departments) > 0 {
		stmt = stmt.Where("execution_department IN ?", filter.Departments)
	}
	if filter.SiteA != "" {
		stmt = stmt.Where("site_a LIKE ?", "%"+filter.SiteA+"%")
	}
	if filter.SiteZ != "" {
		stmt = stmt.Where("site_z LIKE ?", "%"+filter.SiteZ+"%")
	}
	if filter.CircuitID != "" {
		stmt = stmt.Where("circuit_id LIKE ?", "%"+filter.CircuitID+"%")
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		stmt = stmt.Where(
			"site_a LIKE ? OR site_z LIKE ? OR circuit_id LIKE ? OR assignee LIKE ? OR comments LIKE ?",
			like, like, like, like, like,
		)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	if err := stmt.Order("id desc").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *repo) FirstByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*domain.TaskDetail, error) {
	var task domain.TaskDetail
	err := db.WithContext(ctx).
		Model(&domain.TaskDetail{}).
		Where("service_order_id = ?", orderID).
		Order("id asc").
		Limit(1).
		Find(&task).Error
	if err != nil {
		return nil, err
	}
	if task.ID == 0 {
		return nil, nil
	}
	return &task, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Exec(`DELETE FROM task_details WHERE id = ?`, id).Error
}
