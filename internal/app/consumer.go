package app

import (
	"go-leave/internal/bootstrap"
	"go-leave/internal/config"
	"go-leave/internal/dashboard"
	"go-leave/internal/events"
	"go-leave/internal/messaging/kafka/consumer"
	"go-leave/internal/notification"
	"go-leave/internal/shared/cache"
	"go-leave/internal/user"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// NotificationTopics are the topics the notification consumer subscribes to.
var NotificationTopics = []string{
	events.LeaveRequestedTopic,
	events.LeaveDecidedTopic,
	events.UserOTPTopic,
}

// RunConsumer mails notifications for leave and OTP events until
// SIGINT/SIGTERM.
func RunConsumer(cfg *config.Config, logger *zap.Logger) error {
	log := logger.Named("app.consumer")

	in, err := Connect(cfg, logger, true)
	if err != nil {
		return err
	}
	defer in.Close()

	userRepo := user.NewRepository(in.GormDB)
	dashboardService := dashboard.NewService(dashboard.NewRepository(in.GormDB), cache.New(in.Redis, logger), cfg.CacheTTLDashboard, nil, logger)
	notifier := notification.NewNotifier(
		notification.NewLogMailer(logger),
		userRepo,
		dashboardService,
		notification.Options{
			RatePerSecond: cfg.MailPerSecond,
			Burst:         cfg.MailBurst,
			Metrics:       in.Metrics,
		},
		logger,
	)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.KafkaBrokerList(),
		GroupTopics:    NotificationTopics,
		GroupID:        cfg.KafkaGroupID,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, stop := bootstrap.SignalContext()
	defer stop()

	consumer.ConsumeNotifications(ctx, reader, notifier, logger)

	log.Info("consumer shut down")
	return nil
}
