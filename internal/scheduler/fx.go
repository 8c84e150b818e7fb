package scheduler

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(New),
	fx.Invoke(registerHooks),
)

func registerHooks(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return s.Start()
		},
		OnStop: func(_ context.Context) error {
			s.Stop()
			return nil
		},
	})
}
