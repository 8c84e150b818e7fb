package document

import (
	"github.com/tripshield/tripshield/internal/document/repository"
	"github.com/tripshield/tripshield/internal/document/service"
	"go.uber.org/fx"
)

var Module = fx.Module("document.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
