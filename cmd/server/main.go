// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/balaguruva/admin-backend/internal/config"
	"github.com/balaguruva/admin-backend/internal/database"
	"github.com/balaguruva/admin-backend/internal/i18n"
	"github.com/balaguruva/admin-backend/internal/repository"
	"github.com/balaguruva/admin-backend/internal/repository/memory"
	"github.com/balaguruva/admin-backend/internal/router"
	"github.com/balaguruva/admin-backend/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	configureLogging(cfg)

	// Initialize storage
	var store *repository.Store
	if cfg.Database.IsMemory() {
		logrus.Warn("Using in-memory storage; data is lost on restart")
		store = memory.NewStore(memory.New())
	} else {
		db, err := database.Initialize(cfg.Database)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to initialize database")
		}
		defer database.Close(db)

		// Run database migrations
		if err := database.RunMigrations(db); err != nil {
			logrus.WithError(err).Fatal("Failed to run migrations")
		}
		if err := database.SeedInitialData(db); err != nil {
			logrus.WithError(err).Fatal("Failed to seed initial data")
		}
		store = repository.NewGormStore(db)
	}

	// Initialize i18n
	if err := i18n.Initialize(); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize i18n")
	}

	infra, closeInfra := connectInfrastructure(cfg)
	defer closeInfra()

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	app := router.Initialize(store, cfg, infra)
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := app.Sequence.Reconcile(ctx); err != nil {
		logrus.WithError(err).Fatal("Failed to reconcile product counter")
	}

	go app.Contacts.RunPurger(ctx)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      app.Engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logrus.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logrus.Info("Shutting down server...")

	// Create a deadline for shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}

	logrus.Info("Server exited")
}

func configureLogging(cfg *config.Config) {
	if cfg.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// connectInfrastructure opens the optional Redis, Kafka and S3 clients.
func connectInfrastructure(cfg *config.Config) (router.Infrastructure, func()) {
	var infra router.Infrastructure
	var closers []func()

	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logrus.WithError(err).Warn("Redis unavailable, dashboard stats will not be cached")
			rdb.Close()
		} else {
			infra.Redis = rdb
			closers = append(closers, func() { rdb.Close() })
		}
		cancel()
	}

	if cfg.Kafka.Enabled() {
		publisher := services.NewKafkaPublisher(services.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		infra.Events = publisher
		closers = append(closers, func() {
			if err := publisher.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close Kafka writer")
			}
		})
		logrus.WithField("topic", cfg.Kafka.Topic).Info("Publishing events to Kafka")
	}

	storage, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Warn("Object storage unavailable, archive snapshots stay in the database only")
	} else {
		infra.Storage = storage
	}

	return infra, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}
