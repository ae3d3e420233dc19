package resourceledger

import (
	"github.com/transnet/rms/internal/resourceledger/repository"
	"github.com/transnet/rms/internal/resourceledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("resourceledger.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
