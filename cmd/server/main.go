package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/stay-booking-backend/internal/app"
	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/config"
	"github.com/nekogravitycat/stay-booking-backend/internal/db"
	"github.com/nekogravitycat/stay-booking-backend/internal/events"
	"github.com/nekogravitycat/stay-booking-backend/internal/payment"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/clock"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/stay-booking-backend/internal/pricing"
	"github.com/nekogravitycat/stay-booking-backend/internal/reservation"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	log := logger.New(cfg.LogLevel, cfg.IsProduction)

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN, cfg.DBMaxConns)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to db")
	}
	defer pool.Close()

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, pool); err != nil {
			log.WithError(err).Fatal("failed to run migrations")
		}
	}

	// Payment event dedup
	var deduper payment.Deduper = payment.NopDeduper{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("redis unreachable, payment dedup will degrade to store checks")
		}
		deduper = payment.NewRedisDeduper(rdb, cfg.PaymentDedupTTL)
	}

	// Status change publishing
	var notifier reservation.Notifier
	if cfg.KafkaBrokers != "" {
		publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.WithError(err).Warn("failed to close kafka publisher")
			}
		}()
		notifier = publisher
	} else {
		notifier = events.NewLogPublisher(log)
	}

	var verifier *auth.KeyVerifier
	if cfg.PaymentWebhookKeyHash != "" {
		verifier, err = auth.NewKeyVerifier(cfg.PaymentWebhookKeyHash)
		if err != nil {
			log.WithError(err).Fatal("invalid PAYMENT_WEBHOOK_KEY_HASH")
		}
	} else {
		log.Warn("PAYMENT_WEBHOOK_KEY_HASH not set, payment webhook disabled")
	}

	// Init modules
	container := app.NewContainer(app.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		Logger:       log,
		DBPool:       pool,
		JWTSecret:    cfg.JWTSecret,
		JWTTTL:       cfg.JWTAccessTokenTTL,
		Policy: reservation.Policy{
			InstantBook:  cfg.InstantBook,
			PendingHolds: cfg.PendingHolds,
		},
		PricingPolicy: pricing.Policy{
			LongStayNights:    cfg.LongStayNights,
			ServiceFeePercent: cfg.ServiceFeePercent,
		},
		Clock:            clock.NewSystem(),
		PendingTTL:       cfg.PendingTTL,
		ExpiryInterval:   cfg.ExpiryInterval,
		ExpiryBatchSize:  cfg.ExpiryBatchSize,
		CatalogCacheTTL:  cfg.CatalogCacheTTL,
		CatalogCacheSize: cfg.CatalogCacheSize,
		Notifier:         notifier,
		Deduper:          deduper,
		WebhookVerifier:  verifier,
	})
	defer container.Close()

	go container.ExpiryWorker.Start(ctx)

	if cfg.AMQPURL != "" {
		consumer, err := payment.NewConsumer(payment.ConsumerConfig{
			URL:       cfg.AMQPURL,
			QueueName: cfg.PaymentQueue,
			Prefetch:  16,
		}, container.Reconciler, log)
		if err != nil {
			log.WithError(err).Fatal("failed to start payment consumer")
		}
		defer consumer.Close()
		go func() {
			if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
				log.WithError(err).Error("payment consumer stopped")
			}
		}()
	}

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("server running")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	log.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server forced to shutdown")
	}

	log.Info("server exited gracefully")
}
