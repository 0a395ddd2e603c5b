package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type published struct {
	channel string
	body    []byte
}

type fakePublisher struct {
	messages []published
	err      error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.messages = append(f.messages, published{channel: channel, body: message.([]byte)})
	cmd.SetVal(1)
	return cmd
}

func newRealtime(pub *fakePublisher) *RealtimeService {
	return &RealtimeService{rdb: pub, secret: "s3cret", logger: zap.NewNop()}
}

func TestNotifyCreatedPayloadShape(t *testing.T) {
	pub := &fakePublisher{}
	svc := newRealtime(pub)

	svc.NotifyCreated(context.Background(), []string{"u1", "u2"})

	require.Len(t, pub.messages, 1)
	assert.Equal(t, ChannelNotifications, pub.messages[0].channel)

	var signal NotificationSignal
	require.NoError(t, json.Unmarshal(pub.messages[0].body, &signal))
	assert.Equal(t, EventNotificationCreated, signal.Event)
	assert.Equal(t, "s3cret", signal.Token)
	assert.Equal(t, []string{"u1", "u2"}, signal.UIDs)
}

func TestNotifyCreatedSkipsEmptyRecipientList(t *testing.T) {
	pub := &fakePublisher{}
	svc := newRealtime(pub)

	svc.NotifyCreated(context.Background(), nil)

	assert.Empty(t, pub.messages)
}

func TestPublishCommentPayloadShape(t *testing.T) {
	pub := &fakePublisher{}
	svc := newRealtime(pub)

	svc.PublishComment(context.Background(), EventCommentCreated, "p1", "c1", "commenter")

	require.Len(t, pub.messages, 1)
	assert.Equal(t, ChannelPosts, pub.messages[0].channel)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(pub.messages[0].body, &raw))
	assert.Equal(t, "comment:created", raw["event"])
	assert.Equal(t, "p1", raw["postId"])
	assert.Equal(t, "c1", raw["commentId"])
	assert.Equal(t, "commenter", raw["creatorId"])
}

func TestPublishCommentOmitsEmptyCommentID(t *testing.T) {
	pub := &fakePublisher{}
	svc := newRealtime(pub)

	svc.PublishComment(context.Background(), EventCommentRemoved, "p1", "", "moderator")

	require.Len(t, pub.messages, 1)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(pub.messages[0].body, &raw))
	_, present := raw["commentId"]
	assert.False(t, present)
}

func TestPublishAbsorbsRedisError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("redis down")}
	svc := newRealtime(pub)

	// Must not panic or propagate anything.
	svc.NotifyCreated(context.Background(), []string{"u1"})
	svc.PublishComment(context.Background(), EventCommentUpdated, "p1", "c1", "editor")

	assert.Empty(t, pub.messages)
}
