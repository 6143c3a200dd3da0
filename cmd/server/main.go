package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gympay/config"
	"gympay/internal/database"
	"gympay/internal/metrics"
	"gympay/internal/middleware"
	"gympay/internal/repository"
	"gympay/internal/router"
	"gympay/internal/service"
	"gympay/pkg/payment"
)

func main() {
	cfg := config.Load()
	if cfg.MercadoPago.WebhookSecret == "" {
		log.Printf("[MP webhook] MERCADOPAGO_WEBHOOK_SECRET is empty: webhooks will be refused")
	}
	if cfg.MercadoPago.AccessToken == "" {
		log.Printf("[MP] MERCADOPAGO_ACCESS_TOKEN is empty: gateway calls will fail")
	}

	var events *repository.WebhookEventRepository
	if cfg.Database.DSN != "" {
		db, err := database.NewDB(&cfg.Database)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		events = repository.NewWebhookEventRepository(db)
		log.Printf("[WebhookLog] webhook event log enabled")
	} else {
		log.Printf("[WebhookLog] webhook event log disabled: set DATABASE_DSN to enable")
	}

	m := metrics.New()
	gateway := payment.NewMercadoPagoClient(cfg.MercadoPago.BaseURL, cfg.MercadoPago.AccessToken, cfg.MercadoPago.Timeout)
	payments := repository.NewPaymentRepository(&cfg.Backend)
	reconciler := service.NewReconciler(gateway, payments, m, cfg.Reconcile.MembershipPeriod)
	sweeper := service.NewSweeper(payments, reconciler, m)
	dispatcher := service.NewDispatcher()
	limiter := middleware.NewInMemoryRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	if cfg.RateLimit.Window > 0 {
		go limiter.Janitor(bgCtx, cfg.RateLimit.Window)
	}
	if cfg.Reconcile.SweepInterval > 0 {
		go sweeper.Run(bgCtx, cfg.Reconcile.SweepInterval)
	}

	engine := router.Setup(cfg, router.Deps{
		Gateway:    gateway,
		Reconciler: reconciler,
		Sweeper:    sweeper,
		Dispatcher: dispatcher,
		Limiter:    limiter,
		Metrics:    m,
		Events:     events,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	stopBackground()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	// Acknowledged webhooks may still be reconciling.
	if err := dispatcher.Wait(ctx); err != nil {
		log.Printf("background tasks still running at exit: %v", err)
	}
	fmt.Println("server stopped")
}
