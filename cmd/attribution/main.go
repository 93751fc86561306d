package main

import (
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"deeplink-attribution/pkg/config"
	"deeplink-attribution/pkg/featureflags"
	"deeplink-attribution/pkg/health"
	"deeplink-attribution/pkg/httpapi"
	"deeplink-attribution/pkg/logger"
	"deeplink-attribution/pkg/otelcol"
	"deeplink-attribution/pkg/profiling"
	"deeplink-attribution/pkg/redis"
	"deeplink-attribution/pkg/server"
	"deeplink-attribution/pkg/task"
	"deeplink-attribution/services/fingerprint"
	"deeplink-attribution/services/tracking"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		redis.Module,
		otelcol.Module,
		profiling.Module,
		featureflags.Module,
		httpapi.Module,
		health.Module,
		task.Server,
		task.Scheduler,
		fingerprint.Module,
		tracking.Module,
		tracking.TaskModule,
		server.ProvideHTTPServer,
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: logger.Named("fx")}
})
