package monitoring

import (
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type Metrics struct {
	mu              *sync.RWMutex
	RequestCount    int64            `json:"request_count"`
	RequestDuration time.Duration    `json:"avg_request_duration"`
	ActiveRequests  int64            `json:"active_requests"`
	ErrorCount      int64            `json:"error_count"`
	StatusCodes     map[string]int64 `json:"status_codes"`
	Endpoints       map[string]int64 `json:"endpoints"`
	TaskOperations  map[string]int64 `json:"task_operations"`
	StartTime       time.Time        `json:"start_time"`
	LastRequest     time.Time        `json:"last_request"`
	totalDuration   time.Duration
}

type SystemMetrics struct {
	Uptime         time.Duration `json:"uptime"`
	GoroutineCount int           `json:"goroutine_count"`
	CPUCount       int           `json:"cpu_count"`
	GoVersion      string        `json:"go_version"`
	MemoryUsage    MemoryStats   `json:"memory_usage"`
}

type MemoryStats struct {
	Alloc      uint64 `json:"alloc_mb"`
	TotalAlloc uint64 `json:"total_alloc_mb"`
	Sys        uint64 `json:"sys_mb"`
	NumGC      uint32 `json:"num_gc"`
}

var globalMetrics = &Metrics{
	mu:             &sync.RWMutex{},
	StatusCodes:    make(map[string]int64),
	Endpoints:      make(map[string]int64),
	TaskOperations: make(map[string]int64),
	StartTime:      time.Now(),
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		globalMetrics.mu.Lock()
		globalMetrics.ActiveRequests++
		globalMetrics.mu.Unlock()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}

		globalMetrics.mu.Lock()
		defer globalMetrics.mu.Unlock()

		globalMetrics.ActiveRequests--
		globalMetrics.RequestCount++
		globalMetrics.totalDuration += duration
		globalMetrics.RequestDuration = globalMetrics.totalDuration / time.Duration(globalMetrics.RequestCount)
		globalMetrics.LastRequest = time.Now()
		globalMetrics.StatusCodes[http.StatusText(status)]++
		globalMetrics.Endpoints[c.Request.Method+" "+endpoint]++

		if status >= http.StatusInternalServerError {
			globalMetrics.ErrorCount++
		}
	}
}

// RecordTaskOperation counts a completed task mutation ("created", "updated", "deleted").
func RecordTaskOperation(op string) {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()

	if globalMetrics.TaskOperations == nil {
		globalMetrics.TaskOperations = make(map[string]int64)
	}
	globalMetrics.TaskOperations[op]++
}

// GetMetrics returns a snapshot that is safe to read without locking.
func GetMetrics() Metrics {
	globalMetrics.mu.RLock()
	defer globalMetrics.mu.RUnlock()

	return Metrics{
		RequestCount:    globalMetrics.RequestCount,
		RequestDuration: globalMetrics.RequestDuration,
		ActiveRequests:  globalMetrics.ActiveRequests,
		ErrorCount:      globalMetrics.ErrorCount,
		StatusCodes:     copyCounts(globalMetrics.StatusCodes),
		Endpoints:       copyCounts(globalMetrics.Endpoints),
		TaskOperations:  copyCounts(globalMetrics.TaskOperations),
		StartTime:       globalMetrics.StartTime,
		LastRequest:     globalMetrics.LastRequest,
	}
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func GetSystemMetrics() SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemMetrics{
		Uptime:         time.Since(processStart),
		GoroutineCount: runtime.NumGoroutine(),
		CPUCount:       runtime.NumCPU(),
		GoVersion:      runtime.Version(),
		MemoryUsage: MemoryStats{
			Alloc:      bToMb(m.Alloc),
			TotalAlloc: bToMb(m.TotalAlloc),
			Sys:        bToMb(m.Sys),
			NumGC:      m.NumGC,
		},
	}
}

var processStart = time.Now()

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}

func MetricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		app := GetMetrics()
		c.JSON(http.StatusOK, gin.H{
			"application": gin.H{
				"request_count":        app.RequestCount,
				"avg_request_duration": app.RequestDuration.String(),
				"active_requests":      app.ActiveRequests,
				"error_count":          app.ErrorCount,
				"status_codes":         app.StatusCodes,
				"endpoints":            app.Endpoints,
				"task_operations":      app.TaskOperations,
				"start_time":           app.StartTime,
				"last_request":         app.LastRequest,
			},
			"system":    GetSystemMetrics(),
			"timestamp": time.Now().UTC(),
		})
	}
}
