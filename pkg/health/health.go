package health

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("health",
	fx.Provide(ProvideHealth),
	fx.Invoke(Register),
)

type Dependency struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Health struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Deps    []Dependency `json:"deps"`
}

type HealthService interface {
	Liveness(c *gin.Context)
	Readiness(c *gin.Context)
}

// Pinger is the slice of *redis.Client the readiness probe needs.
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type health struct {
	redis Pinger
}

type HealthParams struct {
	fx.In
	Redis *redis.Client `optional:"true"`
}

func ProvideHealth(p HealthParams) HealthService {
	h := &health{}
	if p.Redis != nil {
		h.redis = p.Redis
	}
	return h
}

func Register(engine *gin.Engine, h HealthService) {
	engine.GET("/healthz", h.Liveness)
	engine.GET("/readyz", h.Readiness)
}

func (h *health) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, &Health{
		Status:  "healthy",
		Message: "OK",
	})
}

func (h *health) Readiness(c *gin.Context) {
	this := &Health{
		Status:  "healthy",
		Message: "OK",
	}

	code := http.StatusOK
	deps := make([]Dependency, 0, 1)
	if h.redis != nil {
		dep := Dependency{
			Name:    "redis",
			Status:  "healthy",
			Message: "OK",
		}

		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			dep.Status = "unhealthy"
			dep.Message = err.Error()
			this.Status = "unhealthy"
			this.Message = "dependency unavailable"
			code = http.StatusServiceUnavailable
		}

		deps = append(deps, dep)
	}

	this.Deps = deps

	c.JSON(code, this)
}
