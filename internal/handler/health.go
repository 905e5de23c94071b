package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db    *sqlx.DB
	redis *redis.Client
}

func NewHealthHandler(db *sqlx.DB, redis *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

func (h *HealthHandler) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("/live", h.Liveness)
		health.GET("/ready", h.Readiness)
	}
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness pings the collaborators; a failed ping makes the instance
// unready without killing it.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx := c.Request.Context()
	checks := gin.H{}
	healthy := true

	start := time.Now()
	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = gin.H{"status": "down", "error": "unreachable"}
		healthy = false
	} else {
		checks["database"] = gin.H{"status": "up", "latency_ms": time.Since(start).Milliseconds()}
	}

	start = time.Now()
	if err := h.redis.Ping(ctx).Err(); err != nil {
		checks["redis"] = gin.H{"status": "down", "error": "unreachable"}
		healthy = false
	} else {
		checks["redis"] = gin.H{"status": "up", "latency_ms": time.Since(start).Milliseconds()}
	}

	status := http.StatusOK
	state := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
