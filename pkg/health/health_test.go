package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal("PONG")
	}
	return cmd
}

func probe(t *testing.T, h *health, path string) (int, Health) {
	t.Helper()
	engine := gin.New()
	Register(engine, h)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var body Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestLiveness(t *testing.T) {
	code, body := probe(t, &health{}, "/healthz")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "healthy", body.Status)
}

func TestReadinessRedisUp(t *testing.T) {
	code, body := probe(t, &health{redis: fakePinger{}}, "/readyz")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body.Deps, 1)
	require.Equal(t, "redis", body.Deps[0].Name)
}

func TestReadinessRedisDown(t *testing.T) {
	code, body := probe(t, &health{redis: fakePinger{err: errors.New("connection refused")}}, "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "unhealthy", body.Deps[0].Status)
	require.Equal(t, "connection refused", body.Deps[0].Message)
}
