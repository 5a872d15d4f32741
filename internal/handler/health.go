package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"inventapro/internal/infra"
	"inventapro/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
// storage may be nil when blobs live on local disk.
func Health(db Pinger, rdb *redis.Client, storage *infra.Breaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		if db == nil || db.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		var dlq int64
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		} else {
			dlq, _ = worker.DeadLetterCount(ctx, rdb, worker.QueueProductImport)
		}

		storageStatus := "local"
		if storage != nil {
			storageStatus = storage.State().String()
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":         status == http.StatusOK,
			"db":         dbStatus,
			"redis":      redisStatus,
			"storage":    storageStatus,
			"import_dlq": dlq,
		})
	}
}

// DeadLetters lists the newest failed import jobs, newest first.
func DeadLetters(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
		if err != nil || limit < 1 || limit > 100 {
			limit = 20
		}
		entries, err := worker.ListDeadLetters(c.Request.Context(), rdb, worker.QueueProductImport, limit)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": entries})
	}
}
