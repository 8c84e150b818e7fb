package checkout

import "go.uber.org/fx"

var Module = fx.Module("providers.checkout",
	fx.Provide(NewHostedProvider),
)
