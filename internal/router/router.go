package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/REGENCY-14/Finalyear/internal/config"
	"github.com/REGENCY-14/Finalyear/internal/handler"
	"github.com/REGENCY-14/Finalyear/internal/middleware"
	"github.com/REGENCY-14/Finalyear/pkg/metrics"
)

// Handler is anything that mounts its routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine     *gin.Engine
	auth       *middleware.AuthMiddleware
	authH      Handler
	personnelH Handler
	patientH   Handler
	symptomH   Handler
	uploadH    Handler
	healthH    *handler.HealthHandler
	metrics    *metrics.Metrics
	cfg        *config.Config
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH Handler,
	personnelH Handler,
	patientH Handler,
	symptomH Handler,
	uploadH Handler,
	healthH *handler.HealthHandler,
	m *metrics.Metrics,
	logger zerolog.Logger,
	cfg *config.Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:     engine,
		auth:       auth,
		authH:      authH,
		personnelH: personnelH,
		patientH:   patientH,
		symptomH:   symptomH,
		uploadH:    uploadH,
		healthH:    healthH,
		metrics:    m,
		cfg:        cfg,
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(logger),
		r.metricsMiddleware(),
	)
	engine.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RPS:   cfg.RateLimit.RequestsPerSecond,
			Burst: cfg.RateLimit.Burst,
		})
		engine.Use(limiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.healthH.RegisterRoutes(r.engine.Group(""))
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api")

	// Auth mounts its own public and authenticated subgroups.
	r.authH.RegisterRoutes(api)

	protected := api.Group("", r.auth.Authenticate())
	r.personnelH.RegisterRoutes(protected)
	r.patientH.RegisterRoutes(protected)
	r.symptomH.RegisterRoutes(protected)

	// Uploads carry multipart bodies, so the request size cap applies on top
	// of the per-file limit the service enforces.
	uploads := api.Group("", r.auth.Authenticate(), middleware.SizeLimit(r.cfg.Upload.MaxSizeBytes+1<<20))
	r.uploadH.RegisterRoutes(uploads)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		r.metrics.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		r.metrics.RequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		if c.Writer.Status() >= 500 {
			r.metrics.ErrorTotal.WithLabelValues(c.Request.Method, path, "server").Inc()
		} else if c.Writer.Status() >= 400 {
			r.metrics.ErrorTotal.WithLabelValues(c.Request.Method, path, "client").Inc()
		}
	}
}
