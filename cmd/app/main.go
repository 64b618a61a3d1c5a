package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"techdeputies/internal/billing"
	"techdeputies/internal/config"
	"techdeputies/internal/course"
	"techdeputies/internal/db"
	"techdeputies/internal/email"
	"techdeputies/internal/giftcard"
	"techdeputies/internal/logger"
	"techdeputies/internal/payment"
	"techdeputies/internal/plan"
	"techdeputies/internal/server"
	"techdeputies/internal/settlement"
	"techdeputies/internal/slot"
	"techdeputies/internal/subscription"
	"techdeputies/internal/user"

	"github.com/redis/go-redis/v9"
)

// @title The Tech Deputies API
// @version 1.0
// @description Plans, support sessions, courses and gift cards.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init()
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Info("Starting techdeputies", "port", cfg.Port)

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	emailService := email.New(rdb, email.SMTPConfig{
		From:     cfg.EmailFrom,
		FromName: cfg.EmailFromName,
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Pass:     cfg.SMTPPass,
	}, cfg.Currency)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go emailService.Start(ctx)
	logger.Info("Email worker started")

	var payments payment.Authority
	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		payments = payment.NewRazorpayAuthority(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
		logger.Info("Payments via Razorpay")
	} else {
		payments = payment.NewLogAuthority()
		logger.Warn("No payment keys configured, charges are logged and approved")
	}

	tx := db.NewTxRunner(database)

	userService := user.NewService(user.NewRepository(database), cfg.JWTSecret)
	planRepo := plan.NewRepository(database)
	planService := plan.NewService(planRepo)
	courseService := course.NewService(course.NewRepository(database))
	slotRepo := slot.NewRepository(database)
	subscriptionService := subscription.NewService(subscription.NewRepository(database), tx, planRepo)
	giftCardService := giftcard.NewService(giftcard.NewRepository(database), tx, payments, emailService, giftcard.Config{
		MinAmountCents: cfg.GiftCard.MinCents,
		MaxAmountCents: cfg.GiftCard.MaxCents,
		ValidityDays:   cfg.GiftCard.ValidityDays,
		Currency:       cfg.Currency,
	})
	settlementService := settlement.NewService(settlement.Deps{
		Repo:          settlement.NewRepository(database),
		Tx:            tx,
		Courses:       courseService,
		Slots:         slotRepo,
		Subscriptions: subscriptionService,
		GiftCards:     giftCardService,
		Payments:      payments,
		Notifier:      emailService,
		Users:         userService,
	}, settlement.Config{
		SessionPriceCents: cfg.SessionPriceCents,
		Currency:          cfg.Currency,
	})

	srv := server.New(cfg, server.Handlers{
		Users:         user.NewHandler(userService),
		Plans:         plan.NewHandler(planService),
		Courses:       course.NewHandler(courseService),
		Slots:         slot.NewHandler(slot.NewService(slotRepo)),
		GiftCards:     giftcard.NewHandler(giftCardService),
		Subscriptions: subscription.NewHandler(subscriptionService),
		Settlement:    settlement.NewHandler(settlementService),
		Billing: billing.NewHandler(
			billing.NewService(subscriptionService),
			billing.NewRedisIdempotency(rdb),
			cfg.BillingWebhookSecret,
		),
	}, emailService)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server listening on :%s", cfg.Port)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
