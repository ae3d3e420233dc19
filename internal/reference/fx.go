package reference

import (
	"fmt"

	"github.com/transnet/rms/internal/document"
	"github.com/transnet/rms/internal/reference/domain"
	"github.com/transnet/rms/internal/reference/repository"
	"github.com/transnet/rms/internal/reference/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reference.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(provideSiteResolver),
)

func provideSiteResolver(svc domain.Service) (document.SiteResolver, error) {
	resolver, ok := svc.(document.SiteResolver)
	if !ok {
		return nil, fmt.Errorf("reference service does not resolve sites")
	}
	return resolver, nil
}
