package handlers

import (
	"net/http"

	"taskify/backend/internal/cache"

	"github.com/gin-gonic/gin"
)

type CacheHandler struct {
	Cache      cache.Cache
	WorkerPool *cache.WorkerPool
}

func NewCacheHandler(cacheInstance cache.Cache, pool *cache.WorkerPool) *CacheHandler {
	return &CacheHandler{
		Cache:      cacheInstance,
		WorkerPool: pool,
	}
}

// GetCacheStats returns cache and warmup pool statistics
// GET /cache/stats
func (h *CacheHandler) GetCacheStats(c *gin.Context) {
	stats := gin.H{}

	if h.Cache != nil {
		stats["cache"] = h.Cache.Stats()
	}

	if h.WorkerPool != nil {
		stats["warmup_pool"] = h.WorkerPool.GetStats()
	}

	c.JSON(http.StatusOK, stats)
}

// GetCacheHealth reports whether the cache backend is reachable
// GET /cache/health
func (h *CacheHandler) GetCacheHealth(c *gin.Context) {
	if h.Cache == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":  "unavailable",
			"message": "Cache is not initialized",
			"healthy": false,
		})
		return
	}

	health := gin.H{
		"status":  "healthy",
		"healthy": true,
	}

	if err := h.Cache.Health(); err != nil {
		health["status"] = "degraded"
		health["healthy"] = false
		health["message"] = err.Error()
	}

	if h.WorkerPool != nil && !h.WorkerPool.IsRunning() {
		health["status"] = "degraded"
		health["warmup_pool"] = "stopped"
	}

	c.JSON(http.StatusOK, health)
}
