package httpapi

import (
	"deeplink-attribution/pkg/config"
	"deeplink-attribution/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var Module = fx.Module("httpapi",
	fx.Provide(
		NewEngine,
		NewRegistry,
		func(r *prometheus.Registry) prometheus.Registerer { return r },
	),
	fx.Invoke(registerMetricsEndpoint),
)

func NewEngine(cfg *config.Config) *gin.Engine {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.Logger(), middleware.Error())
	return engine
}

func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func registerMetricsEndpoint(engine *gin.Engine, reg *prometheus.Registry) {
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
}
