package quote

import (
	"github.com/tripshield/tripshield/internal/quote/repository"
	"github.com/tripshield/tripshield/internal/quote/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quote.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
