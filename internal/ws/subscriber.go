package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notifyhub/internal/delivery"
)

// Subscriber pumps the shared pub/sub bus into the hub. Signals are
// at-most-once: anything published while this process is down is simply
// missed, and clients reconcile through the paginated fetch.
type Subscriber struct {
	rdb    *redis.Client
	hub    *Hub
	logger *zap.Logger
}

func NewSubscriber(rdb *redis.Client, hub *Hub, logger *zap.Logger) *Subscriber {
	return &Subscriber{
		rdb:    rdb,
		hub:    hub,
		logger: logger,
	}
}

// Run blocks dispatching signals until the context is cancelled.
func (s *Subscriber) Run(ctx context.Context) error {
	sub := s.rdb.Subscribe(ctx, delivery.ChannelNotifications, delivery.ChannelPosts)
	defer sub.Close()

	s.logger.Info("Subscribed to realtime channels",
		zap.Strings("channels", []string{delivery.ChannelNotifications, delivery.ChannelPosts}),
	)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			s.dispatch(msg)
		}
	}
}

func (s *Subscriber) dispatch(msg *redis.Message) {
	switch msg.Channel {
	case delivery.ChannelNotifications:
		var signal delivery.NotificationSignal
		if err := json.Unmarshal([]byte(msg.Payload), &signal); err != nil {
			s.logger.Error("Malformed notification signal", zap.Error(err))
			return
		}
		if signal.Event == delivery.EventNotificationCreated {
			s.hub.HandleNotificationSignal(signal)
		}
	case delivery.ChannelPosts:
		var signal delivery.PostSignal
		if err := json.Unmarshal([]byte(msg.Payload), &signal); err != nil {
			s.logger.Error("Malformed post signal", zap.Error(err))
			return
		}
		s.hub.HandlePostSignal(signal)
	}
}
