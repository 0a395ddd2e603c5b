package api

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"notifyhub/pkg/metrics"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(logger *zap.Logger, db *pgxpool.Pool, h *NotificationHandler) *Router {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestMetrics())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready"})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1/notifications")
	v1.Use(requireUser())
	{
		v1.GET("", h.FindAll)
		v1.GET("/unread/count", h.CountUnread)
		v1.PATCH("/mark-all", h.MarkAllRead)
		v1.PATCH("/mark/:id", h.MarkRead)
		v1.DELETE("", h.DeleteAll)
		v1.POST("/fcm/token", h.CreateFcmToken)
		v1.DELETE("/fcm/token/:client", h.RemoveFcmToken)
		v1.GET("/:id", h.FindOne)
	}

	return &Router{Engine: r}
}

// requireUser pulls the caller identity set by the upstream gateway.
// Requests without it never reach the repositories.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(400, gin.H{"error": "invalid request"})
			return
		}
		c.Set("userID", userID)
		c.Next()
	}
}

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.RecordHTTPRequestDuration(
			c.Request.Method,
			c.FullPath(),
			fmt.Sprintf("%d", c.Writer.Status()),
			time.Since(start),
		)
	}
}
