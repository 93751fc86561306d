package tracking

import (
	"net/http"
	"slices"
	"time"

	"deeplink-attribution/pkg/config"
	"deeplink-attribution/pkg/errutil"
	"deeplink-attribution/pkg/middleware"
	"deeplink-attribution/services/fingerprint"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type SaveRequest struct {
	// FingerprintID is what the page computed; it is logged but never
	// used as a key.
	FingerprintID string                         `json:"fingerprintId"`
	Fingerprint   *fingerprint.DeviceFingerprint `json:"fingerprint" binding:"required"`
	Params        map[string]string              `json:"params" binding:"required"`
	Timestamp     int64                          `json:"timestamp"`
	Referrer      string                         `json:"referrer"`
	URL           string                         `json:"url"`
}

type SaveResponse struct {
	FingerprintID string `json:"fingerprintId"`
}

type GetRequest struct {
	FingerprintID string                         `json:"fingerprintId"`
	Fingerprint   *fingerprint.DeviceFingerprint `json:"fingerprint" binding:"required"`
}

type GetResponse struct {
	Params        map[string]string `json:"params"`
	Matched       bool              `json:"matched"`
	FingerprintID string            `json:"fingerprintId,omitempty"`
	Method        MatchMethod       `json:"matchMethod,omitempty"`
	Score         float64           `json:"score,omitempty"`
}

type Handler struct {
	svc  *Service
	cors cors.Config
	now  func() time.Time
}

func NewHandler(svc *Service, cfg *config.Config) (*Handler, error) {
	cc, err := corsConfig(cfg.Server.CorsOrigins)
	if err != nil {
		return nil, err
	}
	return &Handler{svc: svc, cors: cc, now: time.Now}, nil
}

// corsConfig lets landing pages on other origins call the tracking API.
// "*" anywhere in origins allows every origin.
func corsConfig(origins []string) (cors.Config, error) {
	cc := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	return cc, cc.Validate()
}

func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/api/tracking", cors.New(h.cors))
	g.POST("/save", h.Save)
	g.POST("/get", h.Get)
	g.GET("/health", h.Health)

	// Group middleware only runs for routed requests, so preflights need routes.
	preflight := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	for _, path := range []string{"/save", "/get", "/health"} {
		g.OPTIONS(path, preflight)
	}
}

func badRequest(err error) error {
	return errutil.BadRequest("invalid request body", nil, errutil.WithDetails(errutil.Detail{
		Field:   "body",
		Message: err.Error(),
	}))
}

// Save handles POST /api/tracking/save, called by the landing page before
// it redirects to the store.
func (h *Handler) Save(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest(err))
		return
	}

	rec := &TrackingRecord{
		Fingerprint: req.Fingerprint,
		Params:      req.Params,
		ClientIP:    c.ClientIP(),
	}
	// Capture time from the page is trusted unless it lies in the future.
	if req.Timestamp > 0 {
		if ts := time.UnixMilli(req.Timestamp); !ts.After(h.now()) {
			rec.CreatedAt = ts
		}
	}

	id, err := h.svc.Save(c.Request.Context(), rec)
	if err != nil {
		_ = c.Error(err)
		return
	}

	middleware.OK(c, SaveResponse{FingerprintID: id})
}

// Get handles POST /api/tracking/get, called by the app on first launch.
func (h *Handler) Get(c *gin.Context) {
	var req GetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest(err))
		return
	}

	res, ok, err := h.svc.Match(c.Request.Context(), req.Fingerprint)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if !ok {
		middleware.OK(c, GetResponse{Params: map[string]string{}})
		return
	}

	middleware.OK(c, GetResponse{
		Params:        res.Record.Params,
		Matched:       true,
		FingerprintID: res.Record.FingerprintID,
		Method:        res.Method,
		Score:         res.Score,
	})
}

func (h *Handler) Health(c *gin.Context) {
	middleware.OK(c, "ok")
}
