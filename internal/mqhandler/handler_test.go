package mqhandler_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"notifyhub/internal/mqhandler"
	"notifyhub/internal/notifier"
)

// dropDeduper treats every event as a redelivery, so the notifier
// returns before touching any of its nil collaborators.
type dropDeduper struct{}

func (dropDeduper) AcquireOnce(context.Context, string, string) bool { return false }

type nullRealtime struct {
	commentSignals int
}

func (n *nullRealtime) NotifyCreated(context.Context, []string) {}

func (n *nullRealtime) PublishComment(_ context.Context, _, _, _, _ string) {
	n.commentSignals++
}

type mqHandler interface {
	Handle(ctx context.Context, raw json.RawMessage) error
}

func TestMalformedPayloadIsAcked(t *testing.T) {
	logger := zap.NewNop()
	realtime := &nullRealtime{}
	n := notifier.NewNotifier(nil, nil, realtime, nil, nil, dropDeduper{}, "", logger)

	handlers := map[string]mqHandler{
		"post.created":    mqhandler.NewPostCreatedHandler(n, logger),
		"comment.created": mqhandler.NewCommentCreatedHandler(n, logger),
		"comment.updated": mqhandler.NewCommentUpdatedHandler(n, logger),
		"comment.removed": mqhandler.NewCommentRemovedHandler(n, logger),
		"user.followed":   mqhandler.NewUserFollowedHandler(n, logger),
		"user.unfollowed": mqhandler.NewUserUnfollowedHandler(n, logger),
	}

	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			// A nil error acks the delivery; malformed payloads must
			// never be requeued.
			assert.NoError(t, h.Handle(context.Background(), json.RawMessage(`{broken`)))
		})
	}
}

func TestCommentChangeForwardsRoomSignal(t *testing.T) {
	logger := zap.NewNop()
	realtime := &nullRealtime{}
	n := notifier.NewNotifier(nil, nil, realtime, nil, nil, dropDeduper{}, "", logger)

	updated := mqhandler.NewCommentUpdatedHandler(n, logger)
	removed := mqhandler.NewCommentRemovedHandler(n, logger)

	payload := json.RawMessage(`{"post_id":"p1","comment_id":"c1","user_id":"u1"}`)
	assert.NoError(t, updated.Handle(context.Background(), payload))
	assert.NoError(t, removed.Handle(context.Background(), payload))

	assert.Equal(t, 2, realtime.commentSignals)
}
