package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/blackshot-store/internal/api"
	"github.com/example/blackshot-store/internal/auth"
	"github.com/example/blackshot-store/internal/config"
	"github.com/example/blackshot-store/internal/domain/banner"
	"github.com/example/blackshot-store/internal/domain/cart"
	"github.com/example/blackshot-store/internal/domain/category"
	"github.com/example/blackshot-store/internal/domain/ident"
	"github.com/example/blackshot-store/internal/domain/order"
	"github.com/example/blackshot-store/internal/domain/product"
	"github.com/example/blackshot-store/internal/domain/review"
	"github.com/example/blackshot-store/internal/domain/settings"
	"github.com/example/blackshot-store/internal/domain/ticket"
	"github.com/example/blackshot-store/internal/domain/user"
	"github.com/example/blackshot-store/internal/infrastructure/kafka"
	"github.com/example/blackshot-store/internal/infrastructure/store"
	"github.com/example/blackshot-store/internal/logging"
	"github.com/example/blackshot-store/internal/media"
	"github.com/example/blackshot-store/internal/seed"
	"github.com/example/blackshot-store/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", "api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	logger.Info("starting api",
		"addr", cfg.HTTPAddr, "store", cfg.StoreDriver, "profile", cfg.Profile,
		"two_factor", cfg.TwoFactorMode, "kafka", cfg.KafkaEnabled())

	s, err := store.Open(ctx, store.OpenConfig{
		Driver:      cfg.StoreDriver,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
		RedisURL:    cfg.RedisURL,
		Profile:     cfg.Profile,
		Quota:       cfg.QuotaBytes,
	})
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	ids := ident.Default
	written, err := seed.Init(ctx, s, ids)
	if err != nil {
		logger.Error("failed to seed store", "error", err)
		os.Exit(1)
	}
	if len(written) > 0 {
		logger.Info("seeded store", "keys", written)
	}

	// Order events are optional. Without brokers orders are only stored.
	var publisher order.Publisher
	if cfg.KafkaEnabled() {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		publisher = producer
		logger.Info("publishing order events", "brokers", cfg.KafkaBrokers, "topic", producer.Topic())
	}

	passwords := auth.NewPasswords(cfg.PasswordHashing)
	var verifier auth.CodeVerifier = auth.ShapeVerifier{}
	if cfg.TwoFactorMode == config.TwoFactorTOTP {
		verifier = auth.NewTOTPVerifier()
	}
	tokens := auth.NewTokenService(cfg.SessionSecret, cfg.SessionTTL)
	images := media.NewConverter(media.Config{
		MaxWidth:       cfg.ImageMaxWidth,
		Quality:        cfg.ImageQuality,
		MaxUploadBytes: cfg.ImageMaxUploadBytes,
		MaxOutputBytes: cfg.ImageMaxOutputBytes,
		MaxPixels:      cfg.ImageMaxPixels,
	})

	// Initialize domain services
	productSvc := product.NewService(s, ids)
	cartSvc := cart.NewService(s, productSvc)
	orderSvc := order.NewService(s, cartSvc, publisher, ids)
	ticketSvc := ticket.NewService(s, ids)
	userSvc := user.NewService(s, passwords, ids)
	security := settings.NewSecurity(s)
	policies := settings.NewPolicies(s)
	upi := settings.NewUPI(s)

	router := api.NewRouter(api.RouterConfig{
		Handlers: api.NewHandlers(api.Services{
			Products: productSvc,
			Reviews:  review.NewService(s, ids),
			Cart:     cartSvc,
			Orders:   orderSvc,
			Tickets:  ticketSvc,
			Policies: policies,
			UPI:      upi,
			Images:   images,
		}),
		CategoryHandlers: api.NewCategoryHandlers(category.NewService(s, ids), banner.NewService(s, ids), images),
		AdminHandlers: api.NewAdminHandlers(api.AdminServices{
			Orders:   orderSvc,
			Tickets:  ticketSvc,
			Users:    userSvc,
			Products: productSvc,
			Policies: policies,
			UPI:      upi,
			Images:   images,
		}),
		AuthHandlers: api.NewAuthHandlers(
			session.NewAdminAuth(security, passwords, verifier, cfg.BackupCodesSingleUse),
			session.NewCustomerAuth(userSvc, s),
			tokens,
		),
		Tokens: tokens,
		Logger: logger,
		WebDir: cfg.WebDir,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
