package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-scheduler/core/cache"
	"campus-scheduler/core/config"
	"campus-scheduler/core/constants"
	"campus-scheduler/core/logger"
	"campus-scheduler/core/mutation"
	"campus-scheduler/core/upstream"
	"campus-scheduler/modules/booking"
	bookingRepository "campus-scheduler/modules/booking/repository"
	"campus-scheduler/modules/notification"
	"campus-scheduler/modules/registration"
	"campus-scheduler/modules/timeline"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// Run loads configuration, wires every module and serves until SIGINT or
// SIGTERM. All modules share one upstream client, one mutation coordinator
// and one booking overlay so optimistic state is consistent across routes.
func Run() error {
	if err := godotenv.Load(); err != nil {
		logger.Warn("Server:Run:NoEnvFile", "detail", err.Error())
	}

	if err := config.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := config.Get()

	redisCache, err := cache.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	client := upstream.NewClient(cfg.Upstream)
	overlay := bookingRepository.NewOverlayRepository()

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())

	e.GET("/health", func(c echo.Context) error {
		checkCtx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		status := map[string]string{"status": "ok", "redis": "ok"}
		code := http.StatusOK
		if err := redisCache.Ping(checkCtx); err != nil {
			status["status"] = "degraded"
			status["redis"] = "unreachable"
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, status)
	})

	notifier := notification.Init(e, redisCache)

	timeout := time.Duration(cfg.Mutation.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = constants.DefaultMutationTimeout
	}
	coordinator := mutation.NewCoordinator(timeout, notifier)

	timeline.Init(e, client, overlay)
	booking.Init(e, client, overlay, coordinator)
	registration.Init(e, client, redisCache, coordinator)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	go func() {
		logger.Info("Server:Run:Listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("Server:Run:StartError", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server:Run:Stopped")
	return nil
}
