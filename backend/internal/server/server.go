// Package server wires the taskify REST API: storage, cache, events, services
// and the gin router.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"taskify/backend/internal/cache"
	"taskify/backend/internal/config"
	"taskify/backend/internal/database"
	"taskify/backend/internal/events"
	"taskify/backend/internal/handlers"
	"taskify/backend/internal/middleware"
	"taskify/backend/internal/monitoring"
	"taskify/backend/internal/repositories"
	"taskify/backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

// Application holds all application dependencies and state
type Application struct {
	Config     *config.Config
	Pool       *database.DatabasePool
	DB         *gorm.DB
	Redis      *redis.Client
	Cache      *cache.MultiLevelCache
	WarmupPool *cache.WorkerPool
	Publisher  events.Publisher
	Router     *gin.Engine
	Server     *http.Server

	// Services
	TaskService     *services.CachedTaskService
	AuthService     *services.AuthServiceImpl
	RegisterService services.RegisterService

	closeOnce sync.Once
}

// New connects to every backing service, migrates the schema and builds the router.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	log.Println("🚀 Initializing taskify backend...")
	log.Printf("📋 Environment: %s", cfg.Server.Environment)

	pool, err := OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}
	app.Pool = pool
	app.DB = pool.DB

	log.Printf("✅ Database connected (%s)", pool.Driver())

	migrationConfig := MigrationConfig(cfg)

	if err := repositories.Migrate(app.DB, pool.Driver(), migrationConfig); err != nil {
		app.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	app.initCache()
	app.initEvents()

	app.AuthService = services.NewAuthService(services.TokenConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		Audience:   cfg.JWT.Audience,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})
	app.RegisterService = services.NewRegisterService()
	app.TaskService = services.NewCachedTaskService(
		services.NewTaskService(app.Publisher),
		app.Cache,
		app.WarmupPool,
		cfg.Cache.TaskListTTL,
	)

	log.Println("✅ All services initialized")

	app.registerHealthChecks()
	app.setupRoutes()

	return app, nil
}

// OpenDatabase opens the connection pool described by cfg.Database.
func OpenDatabase(cfg *config.Config) (*database.DatabasePool, error) {
	pool, err := database.NewDatabasePool(&database.PoolConfig{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		LogLevel:        database.ParseLogLevel(cfg.Database.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return pool, nil
}

func MigrationConfig(cfg *config.Config) *repositories.MigrationConfig {
	mc := repositories.DefaultMigrationConfig()
	mc.MigrationsPath = cfg.Database.MigrationsPath
	mc.DBName = cfg.Database.Name
	return mc
}

func (app *Application) initCache() {
	cfg := app.Config

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		cacheConfig := cache.DefaultCacheConfig()
		cacheConfig.Addr = cfg.GetRedisAddr()
		cacheConfig.Password = cfg.Redis.Password
		cacheConfig.DB = cfg.Redis.DB
		cacheConfig.PoolSize = cfg.Redis.PoolSize
		cacheConfig.MinIdleConns = cfg.Redis.MinIdleConns
		cacheConfig.MaxRetries = cfg.Redis.MaxRetries
		cacheConfig.DialTimeout = cfg.Redis.DialTimeout
		cacheConfig.ReadTimeout = cfg.Redis.ReadTimeout
		cacheConfig.WriteTimeout = cfg.Redis.WriteTimeout

		rc := cache.NewRedisCache(cacheConfig)
		if err := rc.Health(); err != nil {
			log.Printf("⚠️  Redis unavailable: %v (continuing with memory cache only)", err)
			_ = rc.Close()
		} else {
			redisCache = rc
			app.Redis = rc.Client()
			log.Println("✅ Redis connected")
		}
	}

	app.Cache = cache.NewMultiLevelCache(redisCache, cfg.Cache.L1TTL)
	if redisCache != nil {
		log.Println("✅ Multi-level cache initialized (Memory L1 + Redis L2)")
	} else {
		log.Println("✅ Memory cache initialized")
	}

	app.WarmupPool = cache.NewWorkerPool(cfg.Cache.WarmupWorkers, app.Cache)
	app.WarmupPool.Start()
}

func (app *Application) initEvents() {
	kafkaCfg := app.Config.Kafka
	if !kafkaCfg.Enabled() {
		app.Publisher = events.NopPublisher{}
		log.Println("ℹ️  Kafka not configured, task events disabled")
		return
	}

	app.Publisher = events.NewKafkaPublisher(kafkaCfg.Brokers, kafkaCfg.Topic)
	log.Printf("✅ Publishing task events to kafka topic %s", kafkaCfg.Topic)
}

func (app *Application) registerHealthChecks() {
	monitoring.RegisterHealthCheck("database", func(ctx context.Context) error {
		return app.Pool.Health()
	})

	if app.Redis != nil {
		monitoring.RegisterHealthCheck("redis", func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		})
	}
}

func (app *Application) setupRoutes() {
	r := gin.New()

	// Global middleware stack (order matters!)
	r.Use(gin.Logger())
	r.Use(middleware.RecoveryWithLog())
	r.Use(monitoring.MetricsMiddleware())
	r.Use(middleware.SecureHeader())

	rateLimit := rate.Limit(float64(app.Config.RateLimit.RequestsPerMin) / 60.0)
	r.Use(middleware.RateLimiter(rateLimit, app.Config.RateLimit.BurstSize))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     app.Config.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health and monitoring endpoints (no auth required)
	r.GET("/health", monitoring.HealthHandler())
	r.GET("/ready", monitoring.ReadinessHandler())
	r.GET("/live", monitoring.LivenessHandler())
	r.GET("/metrics", monitoring.MetricsHandler())
	r.GET("/metrics/database", app.databaseStatsHandler())

	v1 := r.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(app.DB, app.AuthService, app.TaskService)
	registrationHandler := handlers.NewRegisterHandler(app.DB, app.RegisterService)

	authRoutes := v1.Group("/auth")
	if app.Redis != nil {
		limiter := middleware.NewDistributedRateLimiter(app.Redis)
		authRoutes.Use(limiter.CreateMiddleware("auth", &middleware.RateLimit{
			Rate:    app.Config.RateLimit.AuthRequests,
			Window:  app.Config.RateLimit.AuthWindow,
			KeyFunc: middleware.IPKeyFunc,
		}))
	}
	{
		authRoutes.POST("/register", registrationHandler.Registration)
		authRoutes.POST("/login", authHandler.Token)
		authRoutes.POST("/refresh", authHandler.Refresh)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	// Protected routes (require authentication)
	protected := v1.Group("")
	protected.Use(middleware.AuthzMiddleware(app.AuthService))
	{
		protected.GET("/auth/me", authHandler.Me)

		taskHandler := handlers.NewTaskHandler(app.DB, app.TaskService)
		taskRoutes := protected.Group("/tasks")
		if app.Redis != nil {
			limiter := middleware.NewDistributedRateLimiter(app.Redis)
			taskRoutes.Use(limiter.CreateMiddleware("tasks", &middleware.RateLimit{
				Rate:    app.Config.RateLimit.TaskRequests,
				Window:  app.Config.RateLimit.TaskWindow,
				KeyFunc: middleware.UserKeyFunc,
			}))
		}
		{
			taskRoutes.GET("", taskHandler.GetTasks)
			taskRoutes.POST("", taskHandler.CreateTask)
			taskRoutes.GET("/:id", taskHandler.GetTaskByID)
			taskRoutes.PATCH("/:id", taskHandler.UpdateTask)
			taskRoutes.PUT("/:id", taskHandler.UpdateTask)
			taskRoutes.DELETE("/:id", taskHandler.DeleteTask)
		}

		cacheHandler := handlers.NewCacheHandler(app.Cache, app.WarmupPool)
		cacheRoutes := protected.Group("/cache")
		{
			cacheRoutes.GET("/stats", cacheHandler.GetCacheStats)
			cacheRoutes.GET("/health", cacheHandler.GetCacheHealth)
		}
	}

	app.Router = r
}

func (app *Application) databaseStatsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, app.Pool.Stats())
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully and releases
// every resource.
func (app *Application) Run(ctx context.Context) error {
	addr := app.Config.GetServerAddr()

	app.Server = &http.Server{
		Addr:         addr,
		Handler:      app.Router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		log.Printf("📊 Metrics available at http://%s/metrics", addr)
		log.Printf("💚 Health check at http://%s/health", addr)

		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		app.Close()
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	app.Close()
	log.Println("✅ Server stopped gracefully")
	return nil
}

// Close releases every resource held by the application. It is safe to call more than once.
func (app *Application) Close() {
	app.closeOnce.Do(app.cleanup)
}

func (app *Application) cleanup() {
	log.Println("🧹 Cleaning up resources...")

	if app.WarmupPool != nil {
		app.WarmupPool.Stop()
	}

	// Closing the cache also closes the redis client it wraps.
	if app.Cache != nil {
		if err := app.Cache.Close(); err != nil {
			log.Printf("⚠️  Error closing cache: %v", err)
		}
	} else if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			log.Printf("⚠️  Error closing Redis: %v", err)
		}
	}

	if app.Publisher != nil {
		if err := app.Publisher.Close(); err != nil {
			log.Printf("⚠️  Error closing event publisher: %v", err)
		}
	}

	if app.Pool != nil {
		if err := app.Pool.Close(); err != nil {
			log.Printf("⚠️  Error closing database: %v", err)
		}
	}

	log.Println("✅ Cleanup complete")
}
