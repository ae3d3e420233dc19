package checkresult

import (
	"github.com/transnet/rms/internal/checkresult/repository"
	"github.com/transnet/rms/internal/checkresult/service"
	"go.uber.org/fx"
)

var Module = fx.Module("checkresult.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
