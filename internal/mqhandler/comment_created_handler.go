package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	mqcontracts "notifyhub/contracts/mq"
	"notifyhub/internal/notifier"
)

type CommentCreatedHandler struct {
	notifier *notifier.Notifier
	logger   *zap.Logger
}

func NewCommentCreatedHandler(n *notifier.Notifier, logger *zap.Logger) *CommentCreatedHandler {
	return &CommentCreatedHandler{
		notifier: n,
		logger:   logger,
	}
}

func (h *CommentCreatedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.CommentCreatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal CommentCreatedPayload", zap.Error(err))
		return nil
	}

	h.logger.Info("Handling comment.created event",
		zap.String("post_id", p.PostID),
		zap.String("comment_id", p.CommentID),
	)

	h.notifier.CommentCreated(ctx, p.PostID, p.CommentID)
	return nil
}
