package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"reservehub/internal/app"
	"reservehub/internal/config"
	"reservehub/internal/database"
	"reservehub/internal/events"
	"reservehub/internal/mailer"
	"reservehub/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger.SetDefault(logger.New(os.Stdout, cfg.LogLevel))
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	publisher, err := events.New(cfg.Events.NATSURL, cfg.Events.AMQPURL)
	if err != nil {
		logger.Default().Warn("event broker unavailable, events disabled", "error", err)
		publisher = events.Noop{}
	}
	defer publisher.Close()

	a := app.New(app.Deps{
		Config:    cfg,
		DB:        db,
		Redis:     rdb,
		Publisher: publisher,
		Mailer:    mailer.New(cfg.Mail),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cleanupStop := a.Auth.ScheduleTokenCleanup(ctx, cfg.Auth.TokenCleanupPeriod)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Default().Info("http server listening", "addr", cfg.HTTPAddr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Default().Info("shutting down")

	if cleanupStop != nil {
		close(cleanupStop)
	}
	a.Hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Default().Error("http server shutdown", "error", err)
	}
}
