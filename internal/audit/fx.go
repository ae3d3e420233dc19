package audit

import (
	"github.com/transnet/rms/internal/audit/repository"
	"github.com/transnet/rms/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
