package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"notifyhub/internal/model"
	"notifyhub/internal/repository"
)

// NotificationStore is the read-state surface of the notification store.
type NotificationStore interface {
	FindAll(ctx context.Context, recipientID string, offset, limit int, profile model.FetchProfile) ([]model.Notification, int, error)
	FindOne(ctx context.Context, recipientID, notificationID string, profile model.FetchProfile) (*model.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
	MarkRead(ctx context.Context, recipientID, notificationID string) error
	MarkAllRead(ctx context.Context, recipientID string) error
	DeleteAll(ctx context.Context, recipientID string) error
}

// DeviceTokenStore is the registration surface of the fcm token store.
type DeviceTokenStore interface {
	Upsert(ctx context.Context, userID string, web, android, ios *string) (*model.FcmToken, error)
	RemovePlatform(ctx context.Context, userID string, platform model.Platform) error
}

// NotificationHandler serves the synchronous query surface. Errors to
// callers are limited to generic bad-request/not-found signals; internal
// detail stays in the logs.
type NotificationHandler struct {
	notifications NotificationStore
	fcmTokens     DeviceTokenStore
	logger        *zap.Logger
}

func NewNotificationHandler(
	notifications NotificationStore,
	fcmTokens DeviceTokenStore,
	logger *zap.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		fcmTokens:     fcmTokens,
		logger:        logger,
	}
}

func (h *NotificationHandler) FindAll(c *gin.Context) {
	userID := c.GetString("userID")

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	profile := model.NotificationBare
	if c.Query("relations") == "creator" {
		profile = model.NotificationWithCreator
	}

	data, total, err := h.notifications.FindAll(c, userID, offset, limit, profile)
	if err != nil {
		h.logger.Error("FindAll failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if data == nil {
		data = []model.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  data,
		"total": total,
		"took":  len(data),
	})
}

func (h *NotificationHandler) FindOne(c *gin.Context) {
	userID := c.GetString("userID")

	notificationID := c.Param("id")
	if _, err := uuid.Parse(notificationID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	n, err := h.notifications.FindOne(c, userID, notificationID, model.NotificationWithCreator)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		h.logger.Error("FindOne failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": n})
}

func (h *NotificationHandler) CountUnread(c *gin.Context) {
	userID := c.GetString("userID")

	count, err := h.notifications.CountUnread(c, userID)
	if err != nil {
		h.logger.Error("CountUnread failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": count})
}

// MarkRead is idempotent; marking an already-read or unknown ID succeeds.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetString("userID")

	notificationID := c.Param("id")
	if _, err := uuid.Parse(notificationID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.notifications.MarkRead(c, userID, notificationID); err != nil {
		h.logger.Error("MarkRead failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.notifications.MarkAllRead(c, userID); err != nil {
		h.logger.Error("MarkAllRead failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *NotificationHandler) DeleteAll(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.notifications.DeleteAll(c, userID); err != nil {
		h.logger.Error("DeleteAll failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type createFcmTokenRequest struct {
	Web     *string `json:"web"`
	Android *string `json:"android"`
	IOS     *string `json:"ios"`
}

func (h *NotificationHandler) CreateFcmToken(c *gin.Context) {
	userID := c.GetString("userID")

	var req createFcmTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.Web == nil && req.Android == nil && req.IOS == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	token, err := h.fcmTokens.Upsert(c, userID, req.Web, req.Android, req.IOS)
	if err != nil {
		h.logger.Error("CreateFcmToken failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": token})
}

func (h *NotificationHandler) RemoveFcmToken(c *gin.Context) {
	userID := c.GetString("userID")

	platform := model.Platform(c.Param("client"))
	if !platform.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.fcmTokens.RemovePlatform(c, userID, platform); err != nil {
		h.logger.Error("RemoveFcmToken failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
