// Package app wires configuration, storage, and HTTP serving together.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/riddleworks/dailyriddle/internal/config"
	"github.com/riddleworks/dailyriddle/internal/db"
	"github.com/riddleworks/dailyriddle/internal/generator"
	riddlehttp "github.com/riddleworks/dailyriddle/internal/http"
	"github.com/riddleworks/dailyriddle/internal/models"
	"github.com/riddleworks/dailyriddle/internal/payment"
	"github.com/riddleworks/dailyriddle/internal/quota"
	"github.com/riddleworks/dailyriddle/internal/riddle"
	"github.com/riddleworks/dailyriddle/internal/scheduler"
	"github.com/riddleworks/dailyriddle/internal/security"
	"github.com/riddleworks/dailyriddle/internal/settings"
	"github.com/riddleworks/dailyriddle/internal/store"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate opens the database, runs migrations, and seeds the bootstrap
// admin account.
func Migrate(ctx context.Context, cfg *config.Config) error {
	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	return seedAdminUser(ctx, conn, cfg.Admin)
}

// RunServer boots the riddle service and blocks until ctx is cancelled.
func RunServer(ctx context.Context, cfg *config.Config) error {
	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if errRefresh := settings.RefreshDBConfigSnapshot(ctx, conn); errRefresh != nil {
		return errRefresh
	}
	if errSeed := seedAdminUser(ctx, conn, cfg.Admin); errSeed != nil {
		return errSeed
	}

	maxPerDay := settings.IntValue(settings.MaxGenerationsPerDayKey, cfg.Quota.MaxPerDay)
	tracker := quota.NewTracker(maxPerDay)
	tracker.Start(ctx)

	riddleStore := store.NewRiddleStore(conn)
	gen := generator.NewOpenAIGenerator(cfg.OpenAI)
	service := riddle.NewService(riddleStore, tracker, gen)

	if cfg.Scheduler.Enabled {
		scheduler.New(service, cfg.Scheduler.Hour).Start(ctx)
	}

	var payments *payment.Service
	if cfg.Payment.SecretKey != "" {
		payments = payment.NewService(conn, payment.NewStripeClient(cfg.Payment.SecretKey), cfg.Payment)
	} else {
		log.Warn("no payment secret key configured, paid generation disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	riddlehttp.RegisterRoutes(engine, conn, riddleStore, service, payments, cfg.JWT)

	server := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", cfg.Server.ListenAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case errServe := <-errCh:
		if errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			return errServe
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}

// seedAdminUser creates the bootstrap admin account when no users exist.
func seedAdminUser(ctx context.Context, conn *gorm.DB, admin config.AdminConfig) error {
	if admin.Username == "" || admin.Password == "" {
		return nil
	}
	var count int64
	if errCount := conn.WithContext(ctx).Model(&models.User{}).Count(&count).Error; errCount != nil {
		return errCount
	}
	if count > 0 {
		return nil
	}
	hash, errHash := security.HashPassword(admin.Password)
	if errHash != nil {
		return errHash
	}
	user := models.User{Username: admin.Username, PasswordHash: hash, IsAdmin: true}
	if errCreate := conn.WithContext(ctx).Create(&user).Error; errCreate != nil {
		return errCreate
	}
	log.Infof("seeded admin user %s", admin.Username)
	return nil
}

// requestLogger logs each request with method, path, status, and latency.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		}).Info("request")
	}
}
