package producer

import (
	"context"
	"errors"
	"testing"

	"hrms-lite/internal/events"
	"hrms-lite/internal/messaging/kafka"
	kafkaMock "hrms-lite/internal/messaging/kafka/mock"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type fakeWriter struct {
	written []kafkago.Message
	failFor map[string]error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		if err := w.failFor[string(m.Key)]; err != nil {
			return err
		}
		w.written = append(w.written, m)
	}
	return nil
}

func TestProcessPendingEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes and marks sent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := kafkaMock.NewMockOutboxRepository(ctrl)
		writer := &fakeWriter{}

		event := kafka.OutboxEvent{
			ID:            "evt-1",
			RequestID:     "req-1",
			AggregateType: "attendance",
			AggregateID:   "agg-1",
			EventType:     events.AttendanceRecorded,
			Topic:         events.AttendanceTopic,
			Payload:       []byte(`{"event_type":"attendance.recorded"}`),
		}
		repo.EXPECT().ListPending(ctx, batchSize).Return([]kafka.OutboxEvent{event}, nil)
		repo.EXPECT().MarkSent(ctx, "evt-1").Return(nil)

		err := processPendingEvents(ctx, repo, writer, zap.NewNop())

		require.NoError(t, err)
		require.Len(t, writer.written, 1)
		msg := writer.written[0]
		assert.Equal(t, events.AttendanceTopic, msg.Topic)
		assert.Equal(t, []byte("agg-1"), msg.Key)
		assert.Contains(t, msg.Headers, kafkago.Header{Key: "request_id", Value: []byte("req-1")})
		assert.Contains(t, msg.Headers, kafkago.Header{Key: "event_type", Value: []byte(events.AttendanceRecorded)})
	})

	t.Run("failed publish marks failed and continues", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := kafkaMock.NewMockOutboxRepository(ctrl)
		writer := &fakeWriter{failFor: map[string]error{"agg-1": errors.New("broker unavailable")}}

		repo.EXPECT().ListPending(ctx, batchSize).Return([]kafka.OutboxEvent{
			{ID: "evt-1", AggregateID: "agg-1", Topic: events.EmployeeLifecycleTopic},
			{ID: "evt-2", AggregateID: "agg-2", Topic: events.EmployeeLifecycleTopic},
		}, nil)
		repo.EXPECT().MarkFailed(ctx, "evt-1", "broker unavailable").Return(nil)
		repo.EXPECT().MarkSent(ctx, "evt-2").Return(nil)

		err := processPendingEvents(ctx, repo, writer, zap.NewNop())

		require.NoError(t, err)
		assert.Len(t, writer.written, 1)
	})

	t.Run("list error is returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := kafkaMock.NewMockOutboxRepository(ctrl)
		repo.EXPECT().ListPending(ctx, batchSize).Return(nil, errors.New("db down"))

		err := processPendingEvents(ctx, repo, &fakeWriter{}, zap.NewNop())

		assert.EqualError(t, err, "db down")
	})
}

func TestProcessOutboxEvents_StopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := kafkaMock.NewMockOutboxRepository(ctrl)
	repo.EXPECT().ListPending(gomock.Any(), batchSize).Return(nil, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ProcessOutboxEvents(ctx, repo, &fakeWriter{}, zap.NewNop(), 0)
		close(done)
	}()
	cancel()
	<-done
}
