package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hrms-lite/internal/attendance"
	"hrms-lite/internal/config"
	"hrms-lite/internal/dashboard"
	"hrms-lite/internal/messaging/kafka"
	"hrms-lite/internal/messaging/kafka/producer"
	"hrms-lite/internal/shared/connection"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const warmTimeout = time.Minute

// RunWorker relays the outbox to Kafka and, when Redis is configured, warms
// the dashboard cache on cfg.DashboardWarmSchedule.
func RunWorker(cfg config.Config, logger *zap.Logger) error {
	log := logger.Named("app.worker")

	if cfg.KafkaBroker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DSN(), connectRetries, logger)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, connectRetries, logger)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		cfg.OutboxPollInterval,
	)

	if rdb := connectOptionalRedis(cfg, logger); rdb != nil {
		defer rdb.Close()

		scheduler, err := scheduleDashboardWarm(ctx, cfg, newDashboardService(gormDB, rdb, cfg, logger), log)
		if err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("worker shutting down")
	cancel()

	return nil
}

func newDashboardService(gormDB *gorm.DB, rdb *redis.Client, cfg config.Config, logger *zap.Logger) dashboard.Service {
	attendanceService := attendance.NewService(gormDB, attendance.NewRepository(gormDB), nil, nil, logger)
	return dashboard.NewService(dashboard.NewRepository(gormDB), attendanceService, rdb, cfg.DashboardCacheTTL, logger)
}

func scheduleDashboardWarm(ctx context.Context, cfg config.Config, svc dashboard.Service, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc(cfg.DashboardWarmSchedule, func() {
		warmCtx, cancel := context.WithTimeout(ctx, warmTimeout)
		defer cancel()

		if err := svc.Warm(warmCtx); err != nil {
			log.Error("scheduled dashboard warm failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}

	log.Info("dashboard warm scheduled", zap.String("schedule", cfg.DashboardWarmSchedule))
	c.Start()
	return c, nil
}
