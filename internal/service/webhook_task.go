package service

import (
	"context"
	"log"
	"time"

	"gympay/internal/domain"
	"gympay/internal/models"
)

// EventStore persists the local webhook event log.
type EventStore interface {
	Create(ctx context.Context, ev *models.WebhookEvent) error
	Update(ctx context.Context, ev *models.WebhookEvent) error
}

// ProcessNotification is the detached work behind an acknowledged webhook: log
// the event, reconcile, log the outcome. events may be nil. Event log failures
// never block reconciliation.
func ProcessNotification(ctx context.Context, r PaymentReconciler, events EventStore, ev *models.WebhookEvent, n NotificationEnvelope) error {
	if events != nil {
		if err := events.Create(ctx, ev); err != nil {
			log.Printf("[MP webhook] event %s not logged: %v", ev.EventID, err)
			events = nil
		}
	}

	res, err := r.Reconcile(ctx, n)

	if events != nil {
		now := time.Now()
		ev.ProcessedAt = &now
		switch {
		case err != nil:
			ev.Outcome = domain.ErrorKind(err)
			ev.ProcessingError = err.Error()
		case res.Processed:
			ev.Processed = true
			ev.Outcome = "processed"
		default:
			ev.Outcome = res.Reason
		}
		if uerr := events.Update(ctx, ev); uerr != nil {
			log.Printf("[MP webhook] event %s outcome not logged: %v", ev.EventID, uerr)
		}
	}
	return err
}
