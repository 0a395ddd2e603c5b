package delivery_test

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notifyhub/internal/delivery"
	"notifyhub/internal/model"
)

type fakeTokenStore struct {
	registrations []model.FcmToken
	err           error
	lookedUp      [][]string
}

func (f *fakeTokenStore) FindByUserIDs(_ context.Context, userIDs []string) ([]model.FcmToken, error) {
	f.lookedUp = append(f.lookedUp, userIDs)
	if f.err != nil {
		return nil, f.err
	}
	return f.registrations, nil
}

type fakeSender struct {
	batches [][]*messaging.Message
	resp    *messaging.BatchResponse
	err     error
}

func (f *fakeSender) SendEach(_ context.Context, messages []*messaging.Message) (*messaging.BatchResponse, error) {
	f.batches = append(f.batches, messages)
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &messaging.BatchResponse{SuccessCount: len(messages)}, nil
}

func strptr(s string) *string { return &s }

func TestPushNoRecipientsSkipsLookup(t *testing.T) {
	tokens := &fakeTokenStore{}
	sender := &fakeSender{}
	svc := delivery.NewPushService(tokens, sender, zap.NewNop())

	svc.Push(context.Background(), nil, delivery.Payload{Title: "t"})

	assert.Empty(t, tokens.lookedUp)
	assert.Empty(t, sender.batches)
}

func TestPushNoRegisteredTokensSkipsSend(t *testing.T) {
	tokens := &fakeTokenStore{
		registrations: []model.FcmToken{{UID: "u1"}},
	}
	sender := &fakeSender{}
	svc := delivery.NewPushService(tokens, sender, zap.NewNop())

	svc.Push(context.Background(), []string{"u1"}, delivery.Payload{Title: "t"})

	assert.Empty(t, sender.batches)
}

func TestPushFlattensEveryPlatformToken(t *testing.T) {
	tokens := &fakeTokenStore{
		registrations: []model.FcmToken{
			{UID: "u1", Web: strptr("web-1"), Android: strptr("android-1"), IOS: strptr("ios-1")},
			{UID: "u2", Web: strptr("web-2")},
		},
	}
	sender := &fakeSender{}
	svc := delivery.NewPushService(tokens, sender, zap.NewNop())

	svc.Push(context.Background(), []string{"u1", "u2"}, delivery.Payload{
		Title:    "New Follower",
		Content:  "Alice followed you.",
		MetaData: map[string]any{"action_url": "https://forum.example.com/profile/alice"},
	})

	require.Len(t, sender.batches, 1)
	batch := sender.batches[0]
	require.Len(t, batch, 4)

	sent := make([]string, 0, len(batch))
	for _, msg := range batch {
		sent = append(sent, msg.Token)
		assert.Equal(t, "New Follower", msg.Notification.Title)
		assert.Equal(t, "Alice followed you.", msg.Notification.Body)
		assert.Equal(t, "https://forum.example.com/profile/alice", msg.Data["action_url"])
	}
	assert.ElementsMatch(t, []string{"web-1", "android-1", "ios-1", "web-2"}, sent)
}

func TestPushAbsorbsLookupError(t *testing.T) {
	tokens := &fakeTokenStore{err: errors.New("db down")}
	sender := &fakeSender{}
	svc := delivery.NewPushService(tokens, sender, zap.NewNop())

	svc.Push(context.Background(), []string{"u1"}, delivery.Payload{Title: "t"})

	assert.Empty(t, sender.batches)
}

func TestPushAbsorbsSendError(t *testing.T) {
	tokens := &fakeTokenStore{
		registrations: []model.FcmToken{{UID: "u1", Web: strptr("web-1")}},
	}
	sender := &fakeSender{err: errors.New("fcm unavailable")}
	svc := delivery.NewPushService(tokens, sender, zap.NewNop())

	svc.Push(context.Background(), []string{"u1"}, delivery.Payload{Title: "t"})

	assert.Len(t, sender.batches, 1)
}

func TestPushPartialFailureStillReturns(t *testing.T) {
	tokens := &fakeTokenStore{
		registrations: []model.FcmToken{
			{UID: "u1", Web: strptr("web-1"), Android: strptr("android-stale")},
		},
	}
	sender := &fakeSender{
		resp: &messaging.BatchResponse{SuccessCount: 1, FailureCount: 1},
	}
	svc := delivery.NewPushService(tokens, sender, zap.NewNop())

	svc.Push(context.Background(), []string{"u1"}, delivery.Payload{Title: "t"})

	require.Len(t, sender.batches, 1)
	assert.Len(t, sender.batches[0], 2)
}
