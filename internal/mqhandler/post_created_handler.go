package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	mqcontracts "notifyhub/contracts/mq"
	"notifyhub/internal/notifier"
)

type PostCreatedHandler struct {
	notifier *notifier.Notifier
	logger   *zap.Logger
}

func NewPostCreatedHandler(n *notifier.Notifier, logger *zap.Logger) *PostCreatedHandler {
	return &PostCreatedHandler{
		notifier: n,
		logger:   logger,
	}
}

func (h *PostCreatedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.PostCreatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		// A malformed payload never gets better; ack it instead of looping.
		h.logger.Error("Failed to unmarshal PostCreatedPayload", zap.Error(err))
		return nil
	}

	h.logger.Info("Handling post.created event",
		zap.String("post_id", p.PostID),
	)

	h.notifier.PostCreated(ctx, p.PostID)
	return nil
}
