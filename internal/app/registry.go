package app

import (
	"database/sql"
	"time"

	"hrms-lite/internal/attendance"
	"hrms-lite/internal/config"
	"hrms-lite/internal/dashboard"
	"hrms-lite/internal/employee"
	"hrms-lite/internal/health"
	"hrms-lite/internal/messaging/kafka"
	"hrms-lite/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const (
	writeRatePerSecond = 10
	writeBurst         = 20
	idempotencyTTL     = 24 * time.Hour
)

func registerModules(
	router *gin.Engine,
	gormDB *gorm.DB,
	sqlDB *sql.DB,
	rdb *redis.Client,
	cfg config.Config,
	logger *zap.Logger,
) {
	// --- Repositories ---
	attendanceRepo := attendance.NewRepository(gormDB)
	dashboardRepo := dashboard.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)

	// --- Services ---
	attendanceService := attendance.NewService(gormDB, attendanceRepo, outboxRepo, rdb, logger)
	dashboardService := dashboard.NewService(dashboardRepo, attendanceService, rdb, cfg.DashboardCacheTTL, logger)
	employeeService := employee.NewService(gormDB, employeeRepo, outboxRepo, rdb, logger)

	// --- Handlers ---
	attendanceHandler := attendance.NewHandler(attendanceService, logger)
	dashboardHandler := dashboard.NewHandler(dashboardService, logger)
	employeeHandler := employee.NewHandler(employeeService, logger)
	healthHandler := health.NewHandler(sqlDB, logger)

	writes := []gin.HandlerFunc{
		middleware.RateLimitByIP(rate.Limit(writeRatePerSecond), writeBurst),
		middleware.Idempotency(rdb, idempotencyTTL),
	}

	// --- Routes Registration ---
	api := router.Group("/api")
	{
		attendance.RegisterRoutes(api, attendanceHandler, writes...)
		dashboard.RegisterRoutes(api, dashboardHandler)
		employee.RegisterRoutes(api, employeeHandler, writes...)
	}

	health.RegisterRoutes(router, api, healthHandler)
}
