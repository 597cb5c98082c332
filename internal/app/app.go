package app

import (
	"net/http"
	"time"

	"hrms-lite/internal/config"
	"hrms-lite/internal/middleware"
	"hrms-lite/internal/shared/apperror"
	"hrms-lite/internal/shared/connection"
	"hrms-lite/internal/shared/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const connectRetries = 5

// BuildApp connects the API's infrastructure, migrates the schema when
// enabled and mounts every route on router. The returned cleanup closes the
// connections.
func BuildApp(router *gin.Engine, cfg config.Config, logger *zap.Logger) (func(), error) {
	log := logger.Named("app.api")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DSN(), connectRetries, logger)
	if err != nil {
		return nil, err
	}
	log.Info("database connection established")

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	if cfg.DBAutoMigrate {
		if err := Migrate(gormDB); err != nil {
			sqlDB.Close()
			return nil, err
		}
		log.Info("database schema migrated")
	}

	rdb := connectOptionalRedis(cfg, logger)

	router.Use(
		middleware.RequestID(),
		middleware.ContextLogger(logger),
		cors.New(corsConfig(cfg)),
	)
	router.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, apperror.CodeNotFound, "Endpoint not found", nil)
	})

	registerModules(router, gormDB, sqlDB, rdb, cfg, logger)

	cleanup := func() {
		if rdb != nil {
			rdb.Close()
		}
		sqlDB.Close()
	}
	return cleanup, nil
}

// connectOptionalRedis returns nil when Redis is not configured or not
// reachable. Callers then run without cache and idempotency.
func connectOptionalRedis(cfg config.Config, logger *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, running without cache")
		return nil
	}
	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, connectRetries, logger)
	if err != nil {
		logger.Warn("redis unavailable, running without cache", zap.Error(err))
		return nil
	}
	logger.Info("redis connection established")
	return rdb
}

func corsConfig(cfg config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader, middleware.IdempotencyHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORSAllowedOrigins) == 0 || (len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSAllowedOrigins
	}
	return c
}
