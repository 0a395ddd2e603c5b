package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	mqcontracts "notifyhub/contracts/mq"
	"notifyhub/internal/notifier"
)

type UserFollowedHandler struct {
	notifier *notifier.Notifier
	logger   *zap.Logger
}

func NewUserFollowedHandler(n *notifier.Notifier, logger *zap.Logger) *UserFollowedHandler {
	return &UserFollowedHandler{
		notifier: n,
		logger:   logger,
	}
}

func (h *UserFollowedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.FollowPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal FollowPayload", zap.Error(err))
		return nil
	}

	h.logger.Info("Handling user.followed event",
		zap.String("from_uid", p.FromUID),
		zap.String("to_uid", p.ToUID),
	)

	h.notifier.UserFollowed(ctx, p.FromUID, p.ToUID)
	return nil
}

type UserUnfollowedHandler struct {
	notifier *notifier.Notifier
	logger   *zap.Logger
}

func NewUserUnfollowedHandler(n *notifier.Notifier, logger *zap.Logger) *UserUnfollowedHandler {
	return &UserUnfollowedHandler{
		notifier: n,
		logger:   logger,
	}
}

func (h *UserUnfollowedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.FollowPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal FollowPayload", zap.Error(err))
		return nil
	}

	h.notifier.UserUnfollowed(ctx, p.FromUID, p.ToUID)
	return nil
}
