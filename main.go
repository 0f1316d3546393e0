package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tareas-api/internal/cache"
	"tareas-api/internal/config"
	"tareas-api/internal/database"
	"tareas-api/internal/handlers"
	"tareas-api/internal/middleware"
	"tareas-api/internal/services"
	"tareas-api/internal/stores"
	"tareas-api/internal/worker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func buildRouter(db *gorm.DB, cfg *config.Config, listCache services.ListCache, notifier services.Notifier, health *handlers.HealthHandler) *gin.Engine {
	userStore := stores.NewUserStore()
	taskStore := stores.NewTaskStore()

	authService := services.NewAuthService(userStore, cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	registerService := services.NewRegisterService(userStore, cfg.Auth.BCryptCost)
	taskService := services.NewTaskService(taskStore, userStore, listCache, notifier)

	authHandler := handlers.NewAuthHandler(db, authService)
	registerHandler := handlers.NewRegisterHandler(db, registerService)
	taskHandler := handlers.NewTaskHandler(db, taskService)
	if health == nil {
		health = handlers.NewHealthHandler(db, nil, nil)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.RecoveryWithLog())
	router.Use(middleware.RequestID())
	router.Use(middleware.NewRateLimiter(cfg.RateLimit).Middleware())
	router.Use(cors.Default())

	router.GET("/health", health.Live)
	router.GET("/health/ready", health.Ready)
	router.POST("/users/register", registerHandler.Register)
	router.POST("/token", authHandler.Token)

	tareas := router.Group("/tareas")
	tareas.Use(middleware.RequireAuth(authService))
	{
		tareas.POST("", taskHandler.CreateTask)
		tareas.GET("", taskHandler.GetTasks)
		tareas.GET("/:id", taskHandler.GetTaskByID)
		tareas.PUT("/:id", taskHandler.UpdateTask)
		tareas.DELETE("/:id", taskHandler.DeleteTask)
		tareas.POST("/:id/assign", taskHandler.AssignTask)
		tareas.POST("/:id/unassign", taskHandler.UnassignTask)
	}

	if cfg.Server.StaticDir != "" {
		if _, err := os.Stat(cfg.Server.StaticDir); err == nil {
			router.Static("/static", cfg.Server.StaticDir)
			router.GET("/", func(c *gin.Context) {
				c.File(cfg.Server.StaticDir + "/index.html")
			})
		}
	}

	return router
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Redis backs the task-list cache and the notification queue. When
	// it is unreachable the service still runs: reads hit the database
	// and assignment notifications are skipped.
	var (
		listCache   services.ListCache
		notifier    services.Notifier
		notifWorker *worker.Worker
		queueClient *redis.Client
	)
	cacheStore := cache.NewRedisCache(&cache.CacheConfig{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err := cacheStore.Health(); err != nil {
		log.Printf("redis unavailable, running without cache and notifications: %v", err)
		cacheStore.Close()
		cacheStore = nil
	} else {
		listCache = cache.NewTaskListCache(cacheStore)
		queueClient = redis.NewClient(&redis.Options{
			Addr:         cfg.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		notifier = worker.NewQueue(queueClient)
		notifWorker = worker.NewWorker(queueClient, cfg.Worker.PollInterval)
		notifWorker.RegisterDefaultHandlers()
		notifWorker.Start(cfg.Worker.Concurrency)
	}

	health := handlers.NewHealthHandler(db, cacheStore, queueClient)
	router := buildRouter(db, cfg, listCache, notifier, health)

	srv := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
	if notifWorker != nil {
		notifWorker.Stop()
	}
	if cacheStore != nil {
		if err := cacheStore.Close(); err != nil {
			log.Printf("cache close: %v", err)
		}
	}
	if queueClient != nil {
		if err := queueClient.Close(); err != nil {
			log.Printf("redis close: %v", err)
		}
	}
	log.Println("bye")
}
