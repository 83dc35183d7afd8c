package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Aidin1998/trivia/api"
	"github.com/Aidin1998/trivia/internal/config"
	"github.com/Aidin1998/trivia/internal/database"
	"github.com/Aidin1998/trivia/internal/tracing"
	"github.com/Aidin1998/trivia/internal/trivia"
	"github.com/Aidin1998/trivia/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file")
	pflag.Parse()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Load configuration
	var paths []string
	if *configPath != "" {
		paths = append(paths, *configPath)
	}
	cfg, err := config.LoadConfig(paths...)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create logger
	zapLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		zapLogger.Fatal("Failed to set up tracing", zap.Error(err))
	}

	db, err := database.Open(cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to open database", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			zapLogger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	if cfg.Database.Seed {
		if err := database.Seed(db, zapLogger); err != nil {
			zapLogger.Fatal("Failed to seed database", zap.Error(err))
		}
	}

	// Schedule DB pool metrics collection
	if cfg.Database.StatsInterval > 0 {
		go database.CollectPoolStats(ctx, db, cfg.Database.Driver, cfg.Database.StatsInterval)
	}

	opts := []trivia.Option{}
	if cfg.Redis.Address != "" {
		redisClient, err := database.NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		opts = append(opts, trivia.WithCategoryCache(trivia.NewRedisCategoryCache(redisClient, cfg.Redis.TTL)))
	}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher := trivia.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := publisher.Close(); err != nil {
				zapLogger.Error("Failed to close Kafka publisher", zap.Error(err))
			}
		}()
		opts = append(opts, trivia.WithPublisher(publisher))
	}

	triviaSvc := trivia.NewService(zapLogger, db, opts...)

	gin.SetMode(cfg.Server.Mode)
	apiServer, err := api.NewServer(zapLogger, triviaSvc, api.Options{
		AllowOrigins: cfg.Server.AllowOrigins,
		RateLimit:    cfg.Server.RateLimit,
		ServiceName:  cfg.Tracing.ServiceName,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})
	if err != nil {
		zapLogger.Fatal("Failed to create API server", zap.Error(err))
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- apiServer.Start(cfg.Server.Addr())
	}()

	// Wait for interrupt to shutdown
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			zapLogger.Error("API server stopped", zap.Error(err))
		}
	}
	zapLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shut down API server", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		zapLogger.Error("Failed to flush traces", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	zapLogger.Info("Server exited properly")
}
