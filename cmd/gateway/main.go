package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"notifyhub/internal/config"
	"notifyhub/internal/ws"
	"notifyhub/pkg/logger"
	"notifyhub/pkg/redis"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting realtime gateway...",
		zap.String("redis_addr", cfg.Redis.Addr),
	)

	rdb := redis.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	hub := ws.NewHub(cfg.Realtime.SocketEventSecret, cfg.JWT.Secret, log)
	subscriber := ws.NewSubscriber(rdb, hub, log)

	subCtx, subCancel := context.WithCancel(context.Background())
	defer subCancel()

	go func() {
		if err := subscriber.Run(subCtx); err != nil && err != context.Canceled {
			log.Fatal("Realtime subscriber failed", zap.Error(err))
		}
	}()

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", func(c *gin.Context) {
		hub.HandleWS(c.Writer, c.Request)
	})

	port := cfg.Server.Port
	if p := os.Getenv("GATEWAY_PORT"); p != "" {
		port = p
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Info("Gateway listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down realtime gateway...")

	subCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("Realtime gateway shutdown complete")
}
