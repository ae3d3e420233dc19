package migration

import (
	auditdomain "github.com/transnet/rms/internal/audit/domain"
	crdomain "github.com/transnet/rms/internal/checkresult/domain"
	"github.com/transnet/rms/internal/config"
	refdomain "github.com/transnet/rms/internal/reference/domain"
	rldomain "github.com/transnet/rms/internal/resourceledger/domain"
	"github.com/transnet/rms/internal/seed"
	sodomain "github.com/transnet/rms/internal/serviceorder/domain"
	tddomain "github.com/transnet/rms/internal/taskdetail/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Non-postgres targets (sqlite dev databases, mysql) build the
			// schema from the models directly.
			if err := conn.AutoMigrate(
				&refdomain.Tenant{},
				&refdomain.Site{},
				&sodomain.ServiceOrder{},
				&tddomain.TaskDetail{},
				&rldomain.ResourceLedger{},
				&crdomain.ResourceCheckResult{},
				&auditdomain.AuditLog{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureDefaults(conn)
	}),
)
