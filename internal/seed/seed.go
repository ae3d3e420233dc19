package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	refdomain "github.com/transnet/rms/internal/reference/domain"
	"gorm.io/gorm"
)

const defaultTenantName = "Internal"

var defaultSiteNames = []string{"Nanchang-DC1", "Hangzhou-DC1", "Chengdu-IDC1"}

// EnsureDefaults seeds the default tenant and sites so a fresh install has
// something to attach orders to.
func EnsureDefaults(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureTenant(ctx, tx, node, defaultTenantName); err != nil {
			return err
		}
		for _, name := range defaultSiteNames {
			if err := ensureSite(ctx, tx, node, name); err != nil {
				return err
			}
		}
		return nil
	})
}

func ensureTenant(ctx context.Context, tx *gorm.DB, node *snowflake.Node, name string) error {
	var existing refdomain.Tenant
	if err := tx.WithContext(ctx).Limit(1).Find(&existing, "name = ?", name).Error; err != nil {
		return err
	}
	if existing.ID != 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&refdomain.Tenant{
		ID:   node.Generate(),
		Name: name,
		Slug: slug.Make(name),
	}).Error
}

func ensureSite(ctx context.Context, tx *gorm.DB, node *snowflake.Node, name string) error {
	var existing refdomain.Site
	if err := tx.WithContext(ctx).Limit(1).Find(&existing, "name = ?", name).Error; err != nil {
		return err
	}
	if existing.ID != 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&refdomain.Site{
		ID:   node.Generate(),
		Name: name,
		Slug: slug.Make(name),
	}).Error
}
