package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/ashwinyue/prts/internal/config"
	"github.com/ashwinyue/prts/internal/database"
	"github.com/ashwinyue/prts/internal/handler"
	"github.com/ashwinyue/prts/internal/kv"
	"github.com/ashwinyue/prts/internal/repository"
	"github.com/ashwinyue/prts/internal/router"
	"github.com/ashwinyue/prts/internal/service"
	"github.com/ashwinyue/prts/internal/service/callback"
)

func main() {
	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置 Gin 模式
	gin.SetMode(cfg.Server.Mode)

	// 模型调用日志
	callback.SetupGlobalCallbacks(cfg.App.Debug)

	ctx := context.Background()

	// 初始化存储
	var (
		store kv.Store
		repos *repository.Repositories
	)
	switch cfg.Storage.Backend {
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect redis: %v", err)
		}
		store = kv.NewRedisStore(redisClient, cfg.Redis.KeyPrefix)
		log.Printf("Redis connected: %s", cfg.Redis.GetAddr())
	case "database":
		db, err := database.New(cfg)
		if err != nil {
			log.Fatalf("Failed to init database: %v", err)
		}
		defer db.Close()

		repos = repository.NewRepositories(db.DB)
		store = kv.NewDatabaseStore(repos.KV)
		log.Printf("Database connected: %s", cfg.Database.DBName)
	default:
		store = kv.NewMemoryStore()
		log.Printf("Warning: using in-memory storage, data is lost on restart")
	}

	// 初始化各层
	services, err := service.NewServices(ctx, cfg, store, repos)
	if err != nil {
		log.Fatalf("Failed to init services: %v", err)
	}
	handlers := handler.NewHandlers(services)

	// 初始化路由
	r := router.SetupRouter(handlers)

	// 创建 HTTP 服务器
	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// 启动服务器
	go func() {
		log.Printf("Server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// 优雅关闭
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
