package membership

import (
	"github.com/tripshield/tripshield/internal/membership/repository"
	"github.com/tripshield/tripshield/internal/membership/service"
	"go.uber.org/fx"
)

var Module = fx.Module("membership.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
