package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	mqcontracts "notifyhub/contracts/mq"
	"notifyhub/internal/notifier"
)

// CommentUpdatedHandler and CommentRemovedHandler only forward a room
// signal; neither creates notification rows.

type CommentUpdatedHandler struct {
	notifier *notifier.Notifier
	logger   *zap.Logger
}

func NewCommentUpdatedHandler(n *notifier.Notifier, logger *zap.Logger) *CommentUpdatedHandler {
	return &CommentUpdatedHandler{
		notifier: n,
		logger:   logger,
	}
}

func (h *CommentUpdatedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.CommentChangedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal CommentChangedPayload", zap.Error(err))
		return nil
	}

	h.notifier.CommentUpdated(ctx, p.PostID, p.CommentID, p.UserID)
	return nil
}

type CommentRemovedHandler struct {
	notifier *notifier.Notifier
	logger   *zap.Logger
}

func NewCommentRemovedHandler(n *notifier.Notifier, logger *zap.Logger) *CommentRemovedHandler {
	return &CommentRemovedHandler{
		notifier: n,
		logger:   logger,
	}
}

func (h *CommentRemovedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.CommentChangedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal CommentChangedPayload", zap.Error(err))
		return nil
	}

	h.notifier.CommentRemoved(ctx, p.PostID, p.CommentID, p.UserID)
	return nil
}
