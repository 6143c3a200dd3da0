package handler

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gympay/config"
	"gympay/internal/domain"
	"gympay/internal/metrics"
	"gympay/internal/models"
	"gympay/internal/service"
	"gympay/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TaskRunner starts detached work that outlives the request.
type TaskRunner interface {
	Go(name string, fn func(ctx context.Context) error)
}

type WebhookHandler struct {
	secret     string
	reconciler service.PaymentReconciler
	events     service.EventStore
	tasks      TaskRunner
	metrics    *metrics.Metrics
}

// NewWebhookHandler wires the gateway webhook. events may be nil when the local
// event log is disabled.
func NewWebhookHandler(cfg *config.MercadoPagoConfig, reconciler service.PaymentReconciler, events service.EventStore, tasks TaskRunner, m *metrics.Metrics) *WebhookHandler {
	return &WebhookHandler{
		secret:     cfg.WebhookSecret,
		reconciler: reconciler,
		events:     events,
		tasks:      tasks,
		metrics:    m,
	}
}

// mpNotification is the webhook body: {"type":"payment","action":"payment.created","data":{"id":"123"}}.
type mpNotification struct {
	Type   string `json:"type"`
	Topic  string `json:"topic"`
	Action string `json:"action"`
	Data   struct {
		ID payment.ID `json:"id"`
	} `json:"data"`
}

// Handle authenticates the caller, acknowledges, and only then schedules the
// reconciliation. Nothing that happens afterwards can change the response.
func (h *WebhookHandler) Handle(c *gin.Context) {
	if err := verifySignature(h.secret, c.GetHeader("X-Signature")); err != nil {
		if errors.Is(err, domain.ErrConfiguration) {
			log.Printf("[MP webhook] refusing notification: %v", err)
			h.metrics.IncWebhook("misconfigured")
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":   false,
				"error":     "Webhook secret no configurado",
				"timestamp": timestamp(),
			})
			return
		}
		log.Printf("[MP webhook] %v from %s", err, c.ClientIP())
		h.metrics.IncWebhook("unauthorized")
		c.JSON(http.StatusUnauthorized, gin.H{
			"success":   false,
			"error":     "Firma inválida",
			"timestamp": timestamp(),
		})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("[MP webhook] read body: %v", err)
	}
	env := parseNotification(body, c.Request.URL.Query())
	env.Source = service.SourceWebhook

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Webhook recibido",
		"timestamp": timestamp(),
	})
	c.Writer.Flush()

	if env.Kind == "" && env.ResourceID == "" {
		log.Printf("[MP webhook] unparseable notification acknowledged and dropped: %s", truncate(body, 256))
		h.metrics.IncWebhook("ignored")
		return
	}
	h.metrics.IncWebhook("accepted")
	log.Printf("[MP webhook] accepted kind=%s id=%s", env.Kind, env.ResourceID)

	ev := &models.WebhookEvent{
		EventID:        uuid.NewString(),
		Provider:       domain.ProviderMercadoPago,
		Kind:           env.Kind,
		ResourceID:     env.ResourceID,
		SignatureValid: true,
		IP:             c.ClientIP(),
	}
	h.tasks.Go("mp-"+env.Kind+"-"+env.ResourceID, func(ctx context.Context) error {
		return service.ProcessNotification(ctx, h.reconciler, h.events, ev, env)
	})
}

// verifySignature compares the X-Signature header with the shared secret in
// constant time.
func verifySignature(secret, sig string) error {
	if secret == "" {
		return fmt.Errorf("%w: webhook secret not set", domain.ErrConfiguration)
	}
	if sig == "" {
		return fmt.Errorf("%w: missing signature", domain.ErrAuthentication)
	}
	if !hmac.Equal([]byte(sig), []byte(secret)) {
		return fmt.Errorf("%w: signature mismatch", domain.ErrAuthentication)
	}
	return nil
}

// Status is the unauthenticated liveness probe on the webhook path.
func (h *WebhookHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"status":    "ok",
		"service":   "mercadopago-webhook",
		"message":   "Webhook de Mercado Pago activo",
		"timestamp": timestamp(),
	})
}

// parseNotification reads the JSON body and falls back to the query string
// (type/topic, data.id/id) that the processor also uses.
func parseNotification(body []byte, q url.Values) service.NotificationEnvelope {
	var n mpNotification
	if len(body) > 0 {
		if err := json.Unmarshal(body, &n); err != nil {
			n = mpNotification{}
		}
	}
	kind := n.Type
	if kind == "" {
		kind = n.Topic
	}
	if kind == "" && n.Action != "" {
		kind, _, _ = strings.Cut(n.Action, ".")
	}
	if kind == "" {
		kind = q.Get("type")
	}
	if kind == "" {
		kind = q.Get("topic")
	}
	id := n.Data.ID.String()
	if id == "" {
		id = q.Get("data.id")
	}
	if id == "" {
		id = q.Get("id")
	}
	return service.NotificationEnvelope{Kind: kind, ResourceID: id}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
