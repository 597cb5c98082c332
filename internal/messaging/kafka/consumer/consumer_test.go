package consumer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"hrms-lite/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeReader hands out msgs in order, then cancels the consumer.
type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafkago.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		r.cancel()
		return kafkago.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

type fakeWarmer struct {
	calls int
	err   error
}

func (w *fakeWarmer) Warm(context.Context) error {
	w.calls++
	return w.err
}

func TestConsumeHREvents(t *testing.T) {
	t.Run("warms on every hr event and commits", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		reader := &fakeReader{
			cancel: cancel,
			msgs: []kafkago.Message{
				{Topic: events.EmployeeLifecycleTopic, Offset: 1, Value: []byte(`{"event_type":"employee.created","employee_id":"e1"}`)},
				{Topic: events.AttendanceTopic, Offset: 2, Value: []byte(`{"event_type":"attendance.deleted"}`)},
			},
		}
		warmer := &fakeWarmer{}

		ConsumeHREvents(ctx, reader, warmer, zap.NewNop())

		assert.Equal(t, 2, warmer.calls)
		assert.Equal(t, []int64{1, 2}, reader.committed)
	})

	t.Run("skips undecodable and unrelated messages", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		reader := &fakeReader{
			cancel: cancel,
			msgs: []kafkago.Message{
				{Offset: 1, Value: []byte(`not json`)},
				{Offset: 2, Value: []byte(`{"event_type":"payroll.generated"}`)},
			},
		}
		warmer := &fakeWarmer{}

		ConsumeHREvents(ctx, reader, warmer, zap.NewNop())

		assert.Zero(t, warmer.calls)
		assert.Equal(t, []int64{1, 2}, reader.committed)
	})

	t.Run("failed warm leaves message uncommitted", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		reader := &fakeReader{
			cancel: cancel,
			msgs: []kafkago.Message{
				{Offset: 7, Value: []byte(`{"event_type":"attendance.updated"}`)},
			},
		}
		warmer := &fakeWarmer{err: errors.New("redis down")}

		ConsumeHREvents(ctx, reader, warmer, zap.NewNop())

		assert.Equal(t, 1, warmer.calls)
		assert.Empty(t, reader.committed)
	})
}
