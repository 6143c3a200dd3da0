package router

import (
	"net/http"

	"gympay/config"
	"gympay/internal/domain"
	"gympay/internal/handler"
	"gympay/internal/metrics"
	"gympay/internal/middleware"
	"gympay/internal/repository"
	"gympay/internal/service"
	"gympay/pkg/payment"

	"github.com/gin-gonic/gin"
)

// Deps are the long-lived components main builds and also needs at shutdown.
type Deps struct {
	Gateway    *payment.MercadoPagoClient
	Reconciler *service.Reconciler
	Sweeper    *service.Sweeper
	Dispatcher *service.Dispatcher
	Limiter    *middleware.InMemoryRateLimiter
	Metrics    *metrics.Metrics
	// Events is nil when DATABASE_DSN is empty.
	Events *repository.WebhookEventRepository
}

func Setup(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	var (
		eventStore  service.EventStore
		eventLister handler.EventLister
	)
	if d.Events != nil {
		eventStore = d.Events
		eventLister = d.Events
	}

	webhookHandler := handler.NewWebhookHandler(&cfg.MercadoPago, d.Reconciler, eventStore, d.Dispatcher, d.Metrics)
	verifyHandler := handler.NewVerifyHandler(d.Reconciler)
	checkoutHandler := handler.NewCheckoutHandler(cfg, d.Gateway)
	sweepHandler := handler.NewSweepHandler(d.Sweeper, eventLister)

	// Only client routes are rate limited; the webhook is always acknowledged.
	limitMw := middleware.RateLimit(d.Limiter)
	authMw := middleware.AuthRequired(&cfg.JWT)
	adminMw := middleware.RequireRole(domain.RoleAdmin)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	mp := r.Group("/payments/mercadopago")
	{
		// The processor authenticates with X-Signature, not a JWT.
		mp.POST("/webhook", webhookHandler.Handle)
		mp.GET("/webhook", webhookHandler.Status)

		mp.POST("/verify", limitMw, authMw, verifyHandler.Verify)
		mp.POST("/checkout", limitMw, authMw, checkoutHandler.Create)
		mp.POST("/sweep", limitMw, authMw, adminMw, sweepHandler.Sweep)
		mp.GET("/events/:resourceId", limitMw, authMw, adminMw, sweepHandler.Events)
	}

	return r
}
