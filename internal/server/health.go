package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/azatkul/docvault/internal/blob"
)

const readinessTimeout = 5 * time.Second

// blobProbeKey is never written; readiness only needs the backend to answer,
// and a clean not-found is an answer.
const blobProbeKey = "healthz-probe"

func registerHealthRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/health/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		if err := deps.DB.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "degraded",
				"component": "postgres",
				"error":     err.Error(),
			})
			return
		}

		if err := checkBlobStore(ctx, deps.Blobs); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "degraded",
				"component": "blob",
				"error":     err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func checkBlobStore(ctx context.Context, store blob.Store) error {
	_, err := store.Get(ctx, blobProbeKey)
	if err != nil && !errors.Is(err, blob.ErrObjectNotFound) {
		return err
	}
	return nil
}
