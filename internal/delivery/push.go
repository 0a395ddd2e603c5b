package delivery

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"

	"notifyhub/internal/model"
	"notifyhub/pkg/metrics"
)

// Payload is what every delivery channel carries for one event: the same
// title, content and metadata that land in the stored notification rows.
type Payload struct {
	Title    string
	Content  string
	MetaData map[string]any
}

// Sender is the slice of the FCM messaging client the push channel uses.
type Sender interface {
	SendEach(ctx context.Context, messages []*messaging.Message) (*messaging.BatchResponse, error)
}

// TokenStore looks up device registrations in bulk.
type TokenStore interface {
	FindByUserIDs(ctx context.Context, userIDs []string) ([]model.FcmToken, error)
}

// PushService fans a payload out to every registered device token of the
// given recipients. Delivery is best-effort: lookup errors, empty token
// sets and per-token send failures are logged and absorbed.
type PushService struct {
	tokens TokenStore
	sender Sender
	logger *zap.Logger
}

func NewPushService(tokens TokenStore, sender Sender, logger *zap.Logger) *PushService {
	return &PushService{
		tokens: tokens,
		sender: sender,
		logger: logger,
	}
}

// Push sends one push message per registered token of each recipient.
// Callers observe no result; a recipient with no tokens silently gets
// nothing.
func (s *PushService) Push(ctx context.Context, uids []string, payload Payload) {
	if len(uids) == 0 {
		return
	}

	registrations, err := s.tokens.FindByUserIDs(ctx, uids)
	if err != nil {
		s.logger.Error("Failed to load fcm tokens for push",
			zap.Int("recipients", len(uids)),
			zap.Error(err),
		)
		return
	}

	var combined []string
	for i := range registrations {
		combined = append(combined, registrations[i].Tokens()...)
	}

	// SendEach rejects an empty batch, so bail out before it.
	if len(combined) == 0 {
		s.logger.Debug("No registered tokens, skipping push",
			zap.Int("recipients", len(uids)),
		)
		return
	}

	data := stringifyMetaData(payload.MetaData)
	messages := make([]*messaging.Message, 0, len(combined))
	for _, token := range combined {
		messages = append(messages, &messaging.Message{
			Notification: &messaging.Notification{
				Title: payload.Title,
				Body:  payload.Content,
			},
			Data:  data,
			Token: token,
		})
	}

	resp, err := s.sender.SendEach(ctx, messages)
	if err != nil {
		metrics.AddPushMessagesSent("failed", len(messages))
		s.logger.Error("Push batch send failed",
			zap.Int("messages", len(messages)),
			zap.Error(err),
		)
		return
	}

	metrics.AddPushMessagesSent("success", resp.SuccessCount)
	if resp.FailureCount > 0 {
		// Stale or revoked tokens; the affected user stops receiving
		// push until re-registration.
		metrics.AddPushMessagesSent("failed", resp.FailureCount)
		s.logger.Warn("Some push messages failed",
			zap.Int("success", resp.SuccessCount),
			zap.Int("failed", resp.FailureCount),
		)
	}
}

func stringifyMetaData(meta map[string]any) map[string]string {
	if len(meta) == 0 {
		return nil
	}
	data := make(map[string]string, len(meta))
	for k, v := range meta {
		if s, ok := v.(string); ok {
			data[k] = s
		} else {
			data[k] = fmt.Sprintf("%v", v)
		}
	}
	return data
}
