package handlers

import (
	"net/http"

	"tareas-api/internal/cache"
	"tareas-api/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HealthHandler serves the liveness and readiness probes. The cache and
// queue handles are optional; when redis is not configured the probe
// reports them as disabled.
type HealthHandler struct {
	db    *gorm.DB
	cache *cache.RedisCache
	queue *redis.Client
}

func NewHealthHandler(db *gorm.DB, redisCache *cache.RedisCache, queueClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, cache: redisCache, queue: queueClient}
}

// Live is the liveness probe external uptime monitors hit to keep the
// service warm.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports dependency state. Only the database decides the status
// code: the service runs without redis, so cache and notifications are
// informational.
func (h *HealthHandler) Ready(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	code := http.StatusOK

	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			resp["status"] = "degraded"
			resp["database"] = "down"
			code = http.StatusServiceUnavailable
		} else {
			resp["database"] = "up"
		}
	}

	if h.cache != nil {
		if err := h.cache.Health(); err != nil {
			resp["cache"] = "down"
		} else {
			resp["cache"] = "up"
		}
	} else {
		resp["cache"] = "disabled"
	}

	if h.queue != nil {
		if depth, err := worker.QueueDepth(h.queue); err != nil {
			resp["notifications"] = "down"
		} else {
			resp["notifications"] = "up"
			resp["notification_queue_depth"] = depth
		}
	} else {
		resp["notifications"] = "disabled"
	}

	c.JSON(code, resp)
}
