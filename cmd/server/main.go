package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dgarcia9/blood-bank/internal/adapter/handler"
	"github.com/dgarcia9/blood-bank/internal/adapter/storage"
	"github.com/dgarcia9/blood-bank/internal/core/service"
	"github.com/dgarcia9/blood-bank/migrations"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	httpAddr := envOr("HTTP_ADDR", ":8080")
	mysqlDSN := envOr("MYSQL_DSN", "root:root@tcp(localhost:3306)/bloodbank?parseTime=true&loc=Local")
	redisAddr := envOr("REDIS_ADDR", "localhost:6379")
	threshold := envIntOr("SCARCITY_THRESHOLD", service.DefaultScarcityThreshold)
	lookahead := envIntOr("EXPIRY_LOOKAHEAD_DAYS", service.DefaultExpiryLookahead)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL
	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		logger.Fatal("failed to open mysql", zap.Error(err))
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping mysql", zap.Error(err))
	}
	logger.Info("connected to mysql")

	if err := migrations.Up(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("schema migrations applied")

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	logger.Info("connected to redis")

	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb)

	// Warm the stock snapshot from the authoritative counters.
	levels, err := mysqlAdapter.StockLevels(ctx)
	if err != nil {
		logger.Fatal("failed to load stock levels", zap.Error(err))
	}
	for _, lvl := range levels {
		if err := redisAdapter.SetStock(ctx, lvl.BloodType, lvl.Units); err != nil {
			logger.Warn("failed to warm stock cache", zap.String("blood_type", string(lvl.BloodType)), zap.Error(err))
			break
		}
	}
	logger.Info("stock snapshot warmed", zap.Int("types", len(levels)))

	inventoryService := service.NewInventoryService(mysqlAdapter, redisAdapter, logger)
	alertService := service.NewAlertService(mysqlAdapter, threshold, lookahead, logger)
	donorService := service.NewDonorService(mysqlAdapter, logger)

	httpHandler := handler.NewHTTPHandler(inventoryService, alertService, donorService)
	mux := http.NewServeMux()
	httpHandler.Register(mux)

	httpServer := &http.Server{
		Addr:    httpAddr,
		Handler: mux,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", httpAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")

	rdb.Close()
	db.Close()
	logger.Info("connections closed")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
