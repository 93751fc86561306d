package tracking

import (
	"context"

	"deeplink-attribution/pkg/config"
	"deeplink-attribution/pkg/featureflags"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
)

var Module = fx.Module("tracking.service",
	fx.Provide(
		NewRedisKV,
		NewMetrics,
		provideFuzzyGate,
		NewService,
		NewHandler,
	),
	fx.Invoke(registerRoutes),
)

var TaskModule = fx.Module("tracking.task",
	fx.Invoke(func(cfg *config.Config, mux *asynq.ServeMux, sched *asynq.Scheduler, svc *Service) error {
		return registerHousekeeping(cfg, mux, sched, svc)
	}),
)

func registerRoutes(engine *gin.Engine, h *Handler) {
	h.Register(engine)
}

type flagGate struct {
	flags featureflags.FeatureFlag
	name  string
}

// FuzzyEnabled defaults to on so a flag outage never disables matching.
func (g flagGate) FuzzyEnabled(ctx context.Context) bool {
	return g.flags.Enabled(ctx, g.name, true)
}

func provideFuzzyGate(cfg *config.Config, flags featureflags.FeatureFlag) FuzzyGate {
	return flagGate{flags: flags, name: cfg.Tracking.FuzzyFlag}
}
