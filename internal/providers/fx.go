package providers

import (
	"github.com/tripshield/tripshield/internal/providers/checkout"
	"github.com/tripshield/tripshield/internal/providers/email"
	"github.com/tripshield/tripshield/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	checkout.Module,
	email.Module,
	pdf.Module,
)
