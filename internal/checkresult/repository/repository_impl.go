package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/transnet/rms/internal/checkresult/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, result *domain.ResourceCheckResult) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "service_order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"check_result", "unavailable_reasons", "description", "updated_at",
			}),
		}).
		Create(result).Error
}

func (r *repo) FindByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*domain.ResourceCheckResult, error) {
	var result domain.ResourceCheckResult
	err := db.WithContext(ctx).
		Model(&domain.ResourceCheckResult{}).
		Where("service_order_id = ?", orderID).
		Limit(1).
		Find(&result).Error
	if err != nil {
		return nil, err
	}
	if result.ID == 0 {
		return nil, nil
	}
	return &result, nil
}
