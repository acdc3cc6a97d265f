package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"go-leave/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the subset of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type EventHandler interface {
	Handle(ctx context.Context, eventType string, payload []byte) error
}

// ConsumeNotifications feeds leave and OTP events to handler until ctx is
// cancelled. Undecodable or unknown messages are committed and skipped;
// handler failures leave the offset uncommitted.
func ConsumeNotifications(
	ctx context.Context,
	reader MessageReader,
	handler EventHandler,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.notification")
	log.Info("notification consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("notification consumer stopped")
				return
			}
			log.Error("fetch notification message failed", zap.Error(err))
			continue
		}

		eventType := eventTypeOf(msg)
		if eventType == "" {
			log.Error("notification message has no event type",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := handler.Handle(ctx, eventType, msg.Value); err != nil {
			if isPoison(err) {
				log.Error("drop undeliverable notification event",
					zap.String("event_type", eventType),
					zap.Int64("offset", msg.Offset),
					zap.Error(err),
				)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}

			log.Error("handle notification event failed",
				zap.String("event_type", eventType),
				zap.String("key", string(msg.Key)),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit notification message failed", zap.Error(err))
			continue
		}

		log.Info("notification event handled",
			zap.String("event_type", eventType),
			zap.String("key", string(msg.Key)),
		)
	}
}

func isPoison(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.Is(err, notification.ErrUnknownEvent) ||
		errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr)
}

// eventTypeOf prefers the event_type header set by the outbox publisher and
// falls back to the payload field.
func eventTypeOf(msg kafkago.Message) string {
	for _, h := range msg.Headers {
		if h.Key == "event_type" && len(h.Value) > 0 {
			return string(h.Value)
		}
	}
	var probe struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(msg.Value, &probe); err != nil {
		return ""
	}
	return probe.EventType
}
