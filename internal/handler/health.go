package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/wukjhc-create/elta-crm-sub009/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports process liveness plus DB and Redis connectivity and the
// depth of the refresh dead letter queue. Supplier reachability is
// deliberately not checked here: a dark supplier must not make the pricing
// service itself look down.
func Health(db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "up"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "down"
		}

		redisStatus := "up"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "down"
		}

		var dlqDepth int64
		if redisStatus == "up" && dispatcher != nil {
			if n, err := dispatcher.DLQLength(ctx, worker.QueuePriceRefresh); err == nil {
				dlqDepth = n
			}
		}

		status := http.StatusOK
		if dbStatus != "up" || redisStatus != "up" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":        status == http.StatusOK,
			"service":   "pricing",
			"db":        dbStatus,
			"redis":     redisStatus,
			"dlq_depth": dlqDepth,
		})
	}
}
