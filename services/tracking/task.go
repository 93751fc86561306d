package tracking

import (
	"context"

	"deeplink-attribution/pkg/config"
	"deeplink-attribution/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// HandleHousekeeping runs the periodic tracking:housekeeping task.
func (s *Service) HandleHousekeeping(ctx context.Context, _ *asynq.Task) error {
	return s.Housekeeping(ctx)
}

type scheduler interface {
	Register(cronspec string, task *asynq.Task, opts ...asynq.Option) (string, error)
}

type taskMux interface {
	HandleFunc(pattern string, handler func(context.Context, *asynq.Task) error)
}

func registerHousekeeping(cfg *config.Config, mux taskMux, sched scheduler, svc *Service) error {
	mux.HandleFunc(taskname.TrackingHousekeeping, svc.HandleHousekeeping)

	if cfg.Tracking.HousekeepingSpec == "" {
		zap.L().Info("tracking housekeeping schedule disabled")
		return nil
	}

	entryID, err := sched.Register(cfg.Tracking.HousekeepingSpec, asynq.NewTask(taskname.TrackingHousekeeping, nil))
	if err != nil {
		return err
	}

	zap.L().Info("tracking housekeeping scheduled",
		zap.String("spec", cfg.Tracking.HousekeepingSpec),
		zap.String("entry_id", entryID),
	)
	return nil
}
