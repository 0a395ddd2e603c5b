package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	mqcontracts "notifyhub/contracts/mq"
	"notifyhub/internal/api"
	"notifyhub/internal/client"
	"notifyhub/internal/config"
	"notifyhub/internal/delivery"
	"notifyhub/internal/mqhandler"
	"notifyhub/internal/notifier"
	"notifyhub/internal/repository"
	"notifyhub/pkg/db"
	"notifyhub/pkg/fcm"
	"notifyhub/pkg/logger"
	"notifyhub/pkg/mq"
	"notifyhub/pkg/redis"
	"notifyhub/pkg/util"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting notifications service...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("mq_url", cfg.MQ.URL),
	)

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	// Redis (realtime signals + event dedup)
	rdb := redis.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	// FCM
	fcmClient, err := fcm.NewMessagingClient(context.Background(), cfg.FCM.CredentialsFile)
	if err != nil {
		log.Fatal("Failed to init FCM client", zap.Error(err))
	}

	// Repositories
	notificationRepo := repository.NewNotificationRepository(dbConn, log)
	fcmTokenRepo := repository.NewFcmTokenRepository(dbConn, log)

	// Upstream read clients
	postsClient := client.NewPostsClient(cfg.Upstream.PostsBaseURL)
	usersClient := client.NewUsersClient(cfg.Upstream.UsersBaseURL)

	// Delivery channels
	pushService := delivery.NewPushService(fcmTokenRepo, fcmClient, log)
	realtimeService := delivery.NewRealtimeService(rdb, cfg.Realtime.SocketEventSecret, log)

	deduper := util.NewDeduperWithLogger(rdb, time.Duration(cfg.Consumer.DedupTTLSecond)*time.Second, log)

	n := notifier.NewNotifier(
		notificationRepo,
		pushService,
		realtimeService,
		postsClient,
		usersClient,
		deduper,
		cfg.Realtime.ClientBaseURL,
		log,
	)

	// MQ consumers, one per routing key
	bindings := []struct {
		routingKey string
		handler    mq.MessageHandler
	}{
		{mqcontracts.RoutingKeyPostCreated, mqhandler.NewPostCreatedHandler(n, log).Handle},
		{mqcontracts.RoutingKeyCommentCreated, mqhandler.NewCommentCreatedHandler(n, log).Handle},
		{mqcontracts.RoutingKeyCommentUpdated, mqhandler.NewCommentUpdatedHandler(n, log).Handle},
		{mqcontracts.RoutingKeyCommentRemoved, mqhandler.NewCommentRemovedHandler(n, log).Handle},
		{mqcontracts.RoutingKeyUserFollowed, mqhandler.NewUserFollowedHandler(n, log).Handle},
		{mqcontracts.RoutingKeyUserUnfollowed, mqhandler.NewUserUnfollowedHandler(n, log).Handle},
	}

	consumers := make([]*mq.Consumer, 0, len(bindings))
	for _, b := range bindings {
		queueName := "notifications." + b.routingKey + ".q"
		consumer, err := mq.NewConsumer(cfg.MQ.URL, queueName, b.routingKey, cfg.Consumer.Workers, log)
		if err != nil {
			log.Fatal("Failed to init consumer",
				zap.String("routing_key", b.routingKey),
				zap.Error(err),
			)
		}
		consumer.SetHandler(b.handler)
		consumers = append(consumers, consumer)

		go func(c *mq.Consumer, key string) {
			if err := c.StartConsuming(); err != nil {
				log.Fatal("Consumer failed",
					zap.String("routing_key", key),
					zap.Error(err),
				)
			}
		}(consumer, b.routingKey)
	}
	log.Info("All consumers started", zap.Int("count", len(consumers)))

	// HTTP server (query surface + health + metrics)
	handler := api.NewNotificationHandler(notificationRepo, fcmTokenRepo, log)
	router := api.NewRouter(log, dbConn, handler)
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router.Engine,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("notifications service is fully initialized and running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down notifications service gracefully...")

	for _, c := range consumers {
		c.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("notifications service shutdown complete")
}
