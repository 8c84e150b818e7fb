package payment

import (
	"github.com/tripshield/tripshield/internal/payment/repository"
	"github.com/tripshield/tripshield/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
