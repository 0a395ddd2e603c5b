package delivery

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notifyhub/pkg/metrics"
)

// Redis channels shared with the websocket connection holders.
const (
	ChannelNotifications = "notifications"
	ChannelPosts         = "posts"
)

// Signal event names.
const (
	EventNotificationCreated = "notification:created"
	EventCommentCreated      = "comment:created"
	EventCommentUpdated      = "comment:updated"
	EventCommentRemoved      = "comment:removed"
)

// NotificationSignal cues connection holders that the listed users have
// new notifications. It carries no content; clients re-fetch.
type NotificationSignal struct {
	Event string   `json:"event"`
	Token string   `json:"token"`
	UIDs  []string `json:"uids"`
}

// PostSignal is broadcast verbatim to the post's room for live comment
// indicators.
type PostSignal struct {
	Event     string `json:"event"`
	Token     string `json:"token"`
	PostID    string `json:"postId"`
	CommentID string `json:"commentId,omitempty"`
	CreatorID string `json:"creatorId"`
}

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RealtimeService publishes fire-and-forget signals over the shared
// pub/sub bus. Every signal is stamped with the shared secret so
// connection holders can drop spoofed messages. Publish failures are
// logged and absorbed; durability lives in the notification store.
type RealtimeService struct {
	rdb    redisPublisher
	secret string
	logger *zap.Logger
}

func NewRealtimeService(rdb *redis.Client, secret string, logger *zap.Logger) *RealtimeService {
	return &RealtimeService{
		rdb:    rdb,
		secret: secret,
		logger: logger,
	}
}

// NotifyCreated signals that new notification rows exist for uids.
func (s *RealtimeService) NotifyCreated(ctx context.Context, uids []string) {
	if len(uids) == 0 {
		return
	}
	s.publish(ctx, ChannelNotifications, NotificationSignal{
		Event: EventNotificationCreated,
		Token: s.secret,
		UIDs:  uids,
	})
}

// PublishComment signals a comment change to the post's room.
func (s *RealtimeService) PublishComment(ctx context.Context, event, postID, commentID, creatorID string) {
	s.publish(ctx, ChannelPosts, PostSignal{
		Event:     event,
		Token:     s.secret,
		PostID:    postID,
		CommentID: commentID,
		CreatorID: creatorID,
	})
}

func (s *RealtimeService) publish(ctx context.Context, channel string, signal any) {
	body, err := json.Marshal(signal)
	if err != nil {
		s.logger.Error("Failed to marshal realtime signal",
			zap.String("channel", channel),
			zap.Error(err),
		)
		return
	}

	if err := s.rdb.Publish(ctx, channel, body).Err(); err != nil {
		metrics.IncrementRealtimeSignal(channel, "failed")
		s.logger.Error("Failed to publish realtime signal",
			zap.String("channel", channel),
			zap.Error(err),
		)
		return
	}

	metrics.IncrementRealtimeSignal(channel, "success")
}
