package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports liveness and, through Readyz, whether the three
// backing stores (orders database, product cache, order event broker)
// can currently be reached.
type HealthHandler struct {
	pool   *pgxpool.Pool
	cache  *redis.Client
	broker *amqp.Connection
}

func NewHealthHandler(pool *pgxpool.Pool, cache *redis.Client, broker *amqp.Connection) *HealthHandler {
	return &HealthHandler{pool: pool, cache: cache, broker: broker}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"service": "storefront-api"})
}

func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx := c.Request.Context()

	checks := gin.H{"postgres": "up", "redis": "up", "rabbitmq": "up"}
	ready := true

	if err := h.pool.Ping(ctx); err != nil {
		checks["postgres"] = "down"
		ready = false
	}
	if err := h.cache.Ping(ctx).Err(); err != nil {
		checks["redis"] = "down"
		ready = false
	}
	if h.broker.IsClosed() {
		checks["rabbitmq"] = "down"
		ready = false
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "not ready",
			"checks":  checks,
		})
		return
	}
	respond(c, http.StatusOK, gin.H{"checks": checks})
}
