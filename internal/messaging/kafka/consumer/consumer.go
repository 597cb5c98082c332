package consumer

import (
	"context"
	"encoding/json"
	"hrms-lite/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Topics lists every topic whose events change dashboard figures.
var Topics = []string{events.EmployeeLifecycleTopic, events.AttendanceTopic}

// MessageReader is the part of *kafkago.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// DashboardWarmer rebuilds the cached dashboard snapshot.
type DashboardWarmer interface {
	Warm(ctx context.Context) error
}

type eventHeader struct {
	EventType  string `json:"event_type"`
	RequestID  string `json:"request_id"`
	EmployeeID string `json:"employee_id"`
}

// ConsumeHREvents re-warms the dashboard cache for every employee or
// attendance change. Each warm rebuilds the whole snapshot, so a failed warm
// is covered by the next event's.
func ConsumeHREvents(
	ctx context.Context,
	reader MessageReader,
	warmer DashboardWarmer,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.hr_events")
	log.Info("hr events consumer started", zap.Strings("topics", Topics))

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("hr events consumer stopped")
				return
			}
			log.Error("fetch hr event failed", zap.Error(err))
			continue
		}

		var header eventHeader
		if err := json.Unmarshal(msg.Value, &header); err != nil {
			log.Error("decode hr event failed",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if !handles(header.EventType) {
			log.Debug("skipping unrelated event", zap.String("event_type", header.EventType))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := warmer.Warm(ctx); err != nil {
			if ctx.Err() != nil {
				log.Info("hr events consumer stopped")
				return
			}
			log.Error("warm dashboard from event failed",
				zap.String("event_type", header.EventType),
				zap.String("request_id", header.RequestID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit hr event failed", zap.Error(err))
			continue
		}

		log.Info("dashboard warmed from event",
			zap.String("event_type", header.EventType),
			zap.String("request_id", header.RequestID),
			zap.String("employee_id", header.EmployeeID),
		)
	}
}

func handles(eventType string) bool {
	switch eventType {
	case events.EmployeeCreated, events.EmployeeDeleted,
		events.AttendanceRecorded, events.AttendanceUpdated, events.AttendanceDeleted:
		return true
	default:
		return false
	}
}
