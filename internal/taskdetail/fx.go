package taskdetail

import (
	"github.com/transnet/rms/internal/taskdetail/repository"
	"github.com/transnet/rms/internal/taskdetail/service"
	"go.uber.org/fx"
)

var Module = fx.Module("taskdetail.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
