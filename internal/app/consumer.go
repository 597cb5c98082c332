package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"hrms-lite/internal/config"
	"hrms-lite/internal/messaging/kafka/consumer"
	"hrms-lite/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const consumerGroupID = "hrms-lite-dashboard"

// RunConsumer keeps the cached dashboard snapshot fresh by re-warming it
// after every HR event.
func RunConsumer(cfg config.Config, logger *zap.Logger) error {
	log := logger.Named("app.consumer")

	if cfg.KafkaBroker == "" {
		return errors.New("KAFKA_BROKER is required")
	}
	if cfg.RedisAddr == "" {
		return errors.New("REDIS_ADDR is required")
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

	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, connectRetries, logger)
	if err != nil {
		return err
	}
	defer rdb.Close()

	dashboardService := newDashboardService(gormDB, rdb, cfg, logger)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		GroupTopics:    consumer.Topics,
		GroupID:        consumerGroupID,
		CommitInterval: 0,
		StartOffset:    kafkago.LastOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeHREvents(ctx, reader, dashboardService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("consumer shutting down")
	cancel()

	return nil
}
