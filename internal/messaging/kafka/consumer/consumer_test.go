package consumer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go-leave/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeReader struct {
	msgs      []kafkago.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

type handlerFunc func(ctx context.Context, eventType string, payload []byte) error

func (f handlerFunc) Handle(ctx context.Context, eventType string, payload []byte) error {
	return f(ctx, eventType, payload)
}

func header(eventType string) []kafkago.Header {
	return []kafkago.Header{{Key: "event_type", Value: []byte(eventType)}}
}

func TestConsumeNotifications(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		cancel: cancel,
		msgs: []kafkago.Message{
			{Offset: 1, Headers: header("leave_requested"), Value: []byte(`{}`)},
			{Offset: 2, Value: []byte(`{"event_type":"leave_decided"}`)},
			{Offset: 3, Value: []byte(`garbage`)},
			{Offset: 4, Headers: header("mystery"), Value: []byte(`{}`)},
			{Offset: 5, Headers: header("otp_requested"), Value: []byte(`{}`)},
		},
	}

	var seen []string
	handler := handlerFunc(func(_ context.Context, eventType string, _ []byte) error {
		seen = append(seen, eventType)
		switch eventType {
		case "mystery":
			return fmt.Errorf("%w: mystery", notification.ErrUnknownEvent)
		case "otp_requested":
			return errors.New("mailer down")
		}
		return nil
	})

	ConsumeNotifications(ctx, reader, handler, zap.NewNop())

	assert.Equal(t, []string{"leave_requested", "leave_decided", "mystery", "otp_requested"}, seen)
	assert.Equal(t, []int64{1, 2, 3, 4}, reader.committed)
}

func TestEventTypeOf(t *testing.T) {
	assert.Equal(t, "leave_decided", eventTypeOf(kafkago.Message{Headers: header("leave_decided"), Value: []byte(`{"event_type":"other"}`)}))
	assert.Equal(t, "other", eventTypeOf(kafkago.Message{Value: []byte(`{"event_type":"other"}`)}))
	assert.Empty(t, eventTypeOf(kafkago.Message{Value: []byte(`nope`)}))
}
