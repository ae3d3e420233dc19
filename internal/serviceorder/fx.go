package serviceorder

import (
	"github.com/transnet/rms/internal/serviceorder/repository"
	"github.com/transnet/rms/internal/serviceorder/service"
	"go.uber.org/fx"
)

var Module = fx.Module("serviceorder.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
